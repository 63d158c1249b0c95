// Package metrics defines Prometheus metrics for rent-notifier.
//
// The notifier is a batch job, so metrics live in their own Registry and
// are pushed to a Pushgateway at the end of a run instead of being scraped.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "rent_notifier"

// Registry holds every rent-notifier metric.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Run metrics.
var (
	RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of runs by outcome (notified, notify_failed, no_new, failed).",
	}, []string{"outcome"})

	RunDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of a full run in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	LastSuccessTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last run that finished without a fatal error.",
	})
)

// Fetch metrics.
var (
	FetchDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of search page fetches in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Extraction metrics.
var (
	BuildingsFound = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "buildings_found",
		Help:      "Number of building groups on the last fetched page.",
	})

	ListingsExtractedTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_extracted_total",
		Help:      "Total number of unit listings extracted.",
	})

	RowsSkippedTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_skipped_total",
		Help:      "Total number of unit rows skipped for lacking a usable link.",
	})

	NewListingsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "new_listings_total",
		Help:      "Total number of listings not seen in previous runs.",
	})
)

// Digest and notification metrics.
var (
	DigestTruncatedTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "digest_truncated_total",
		Help:      "Total number of digests cut to the character budget.",
	})

	NotificationsSentTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of digests delivered.",
	})

	NotificationFailuresTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of digest delivery failures.",
	})

	NotificationDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of push API calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// History metrics.
var (
	HistoryAppendedTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_appended_total",
		Help:      "Total number of urls appended to the history.",
	})
)

// Push sends the current value of every metric in Registry to the
// Pushgateway at url under the given job name, replacing the job's
// previous group.
func Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics: %w", err)
	}
	return nil
}
