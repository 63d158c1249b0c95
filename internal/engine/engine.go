// Package engine runs the fetch, extract, deduplicate, notify and persist
// pipeline once per invocation.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/donaldgifford/rent-notifier/internal/dedup"
	"github.com/donaldgifford/rent-notifier/internal/digest"
	"github.com/donaldgifford/rent-notifier/internal/extract"
	"github.com/donaldgifford/rent-notifier/internal/fetch"
	"github.com/donaldgifford/rent-notifier/internal/history"
	"github.com/donaldgifford/rent-notifier/internal/metrics"
	"github.com/donaldgifford/rent-notifier/internal/notify"
	"github.com/donaldgifford/rent-notifier/pkg/logger"
	domain "github.com/donaldgifford/rent-notifier/pkg/types"
)

// Run outcomes, used as the runs_total label.
const (
	OutcomeNotified     = "notified"
	OutcomeNotifyFailed = "notify_failed"
	OutcomeNoNew        = "no_new"
	OutcomeFailed       = "failed"
)

// Pipeline orchestrates a single notifier run.
type Pipeline struct {
	fetcher   fetch.Fetcher
	history   history.Store
	notifier  notify.Notifier
	extractor *extract.Extractor
	composer  *digest.Composer
	log       *slog.Logger

	url             string
	requireDelivery bool
	dryRun          bool
	newRunID        func() string
	now             func() time.Time
}

// NewPipeline creates a new Pipeline with injected dependencies.
func NewPipeline(
	f fetch.Fetcher,
	h history.Store,
	n notify.Notifier,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		fetcher:   f,
		history:   h,
		notifier:  n,
		extractor: extract.New(),
		composer:  digest.NewComposer(),
		log:       slog.Default(),
		newRunID:  uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithURL sets the search page to watch.
func WithURL(url string) PipelineOption {
	return func(p *Pipeline) {
		p.url = url
	}
}

// WithExtractor sets the listing extractor.
func WithExtractor(e *extract.Extractor) PipelineOption {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

// WithComposer sets the digest composer.
func WithComposer(c *digest.Composer) PipelineOption {
	return func(p *Pipeline) {
		p.composer = c
	}
}

// WithRequireDelivery skips the history append when the notification
// could not be delivered.
func WithRequireDelivery(v bool) PipelineOption {
	return func(p *Pipeline) {
		p.requireDelivery = v
	}
}

// WithDryRun leaves the history untouched after notifying.
func WithDryRun(v bool) PipelineOption {
	return func(p *Pipeline) {
		p.dryRun = v
	}
}

// WithRunIDFunc overrides run id generation.
func WithRunIDFunc(fn func() string) PipelineOption {
	return func(p *Pipeline) {
		p.newRunID = fn
	}
}

// WithClock overrides the clock used for the last-success timestamp.
func WithClock(fn func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = fn
	}
}

// Run executes one pass of the pipeline. The returned summary is never nil;
// on a fatal error its State is StateFailed and FailedAt names the stage.
// A failed notification is not fatal. Fetch, parse and history load
// failures leave the history untouched.
func (p *Pipeline) Run(ctx context.Context) (*domain.RunSummary, error) {
	start := p.now()
	defer func() {
		metrics.RunDuration.Observe(p.now().Sub(start).Seconds())
	}()

	sum := &domain.RunSummary{RunID: p.newRunID(), State: domain.StateIdle}
	log := logger.ForRun(p.log, sum.RunID)

	fail := func(stage domain.RunState, err error) (*domain.RunSummary, error) {
		sum.State = domain.StateFailed
		sum.FailedAt = stage
		metrics.RunsTotal.WithLabelValues(OutcomeFailed).Inc()
		log.Error("run failed", "stage", stage, "error", err)
		return sum, err
	}

	sum.State = domain.StateFetching
	log.Info("fetching search page", "url", p.url)
	body, err := p.fetcher.Fetch(ctx, p.url)
	if err != nil {
		return fail(domain.StateFetching, fmt.Errorf("fetching search page: %w", err))
	}

	sum.State = domain.StateParsing
	doc, err := extract.Parse(bytes.NewReader(body))
	if err != nil {
		return fail(domain.StateParsing, err)
	}

	sum.State = domain.StateExtracting
	res := p.extractor.Extract(doc)
	sum.Buildings = res.Buildings
	sum.Extracted = len(res.Listings)
	sum.SkippedRows = res.Skipped
	metrics.BuildingsFound.Set(float64(res.Buildings))
	metrics.ListingsExtractedTotal.Add(float64(len(res.Listings)))
	metrics.RowsSkippedTotal.Add(float64(res.Skipped))
	log.Info("page parsed",
		"buildings", res.Buildings,
		"listings", len(res.Listings),
		"skipped_rows", res.Skipped,
	)
	if res.Skipped > 0 {
		log.Debug("rows without a usable detail link were skipped", "count", res.Skipped)
	}

	sum.State = domain.StateLoadingHistory
	seen, err := p.history.Load(ctx)
	if err != nil {
		return fail(domain.StateLoadingHistory, fmt.Errorf("loading history: %w", err))
	}

	sum.State = domain.StateDeduplicating
	acc := dedup.NewAccumulator()
	fresh := dedup.Filter(res.Listings, seen, acc)
	sum.NewListings = len(fresh)
	metrics.NewListingsTotal.Add(float64(len(fresh)))
	log.Info("deduplicated listings", "new_listings", len(fresh), "history_size", len(seen))

	if len(fresh) == 0 {
		sum.State = domain.StateDoneNoNew
		p.succeed(OutcomeNoNew)
		log.Info("no new listings")
		return sum, nil
	}

	sum.State = domain.StateComposing
	d, err := p.composer.Compose(fresh)
	if err != nil {
		return fail(domain.StateComposing, fmt.Errorf("composing digest: %w", err))
	}
	sum.DigestChars = utf8.RuneCountInString(d.Text)
	sum.Truncated = d.Truncated
	if d.Truncated {
		metrics.DigestTruncatedTotal.Inc()
		log.Warn("digest truncated to character budget", "listings", d.Count)
	}

	sum.State = domain.StateNotifying
	if err := p.notifier.Send(ctx, d.Text); err != nil {
		sum.NotifyErr = err.Error()
		metrics.NotificationFailuresTotal.Inc()
		log.Error("notification failed", "error", err)
	} else {
		sum.Notified = true
		metrics.NotificationsSentTotal.Inc()
		log.Info("notification sent", "listings", d.Count)
	}

	sum.State = domain.StatePersisting
	urls := acc.URLs()
	switch {
	case p.dryRun:
		log.Info("dry run, history not updated", "urls", len(urls))
	case p.requireDelivery && !sum.Notified:
		log.Warn("delivery failed, history not updated", "urls", len(urls))
	default:
		if err := p.history.Append(ctx, urls); err != nil {
			return fail(domain.StatePersisting, fmt.Errorf("appending history: %w", err))
		}
		sum.Persisted = len(urls)
		metrics.HistoryAppendedTotal.Add(float64(len(urls)))
		log.Info("history updated", "urls", len(urls))
	}

	sum.State = domain.StateTerminated
	if sum.Notified {
		p.succeed(OutcomeNotified)
	} else {
		p.succeed(OutcomeNotifyFailed)
	}
	return sum, nil
}

func (p *Pipeline) succeed(outcome string) {
	metrics.RunsTotal.WithLabelValues(outcome).Inc()
	metrics.LastSuccessTimestamp.Set(float64(p.now().Unix()))
}
