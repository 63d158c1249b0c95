package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/rent-notifier/internal/config"
	"github.com/donaldgifford/rent-notifier/internal/digest"
	"github.com/donaldgifford/rent-notifier/internal/engine"
	"github.com/donaldgifford/rent-notifier/internal/extract"
	"github.com/donaldgifford/rent-notifier/internal/fetch"
	"github.com/donaldgifford/rent-notifier/internal/history"
	"github.com/donaldgifford/rent-notifier/internal/metrics"
	"github.com/donaldgifford/rent-notifier/internal/notify"
)

func runNotifier(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	dryRun := viper.GetBool("dry-run")

	store, err := history.Open(ctx, cfg.History)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn("closing history", "error", cerr)
		}
	}()

	fetcher := fetch.NewHTTPFetcher(
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithReferer(cfg.Fetch.Referer),
		fetch.WithTimeout(cfg.Fetch.Timeout),
	)

	p := engine.NewPipeline(fetcher, store, buildNotifier(cfg, log, dryRun),
		engine.WithLogger(log),
		engine.WithURL(cfg.Fetch.URL),
		engine.WithExtractor(extract.New(extract.WithOrigin(cfg.Fetch.Origin))),
		engine.WithComposer(digest.NewComposer(digest.WithMaxChars(cfg.Digest.MaxChars))),
		engine.WithRequireDelivery(cfg.History.RequireDelivery),
		engine.WithDryRun(dryRun),
	)

	sum, runErr := p.Run(ctx)
	pushMetrics(ctx, cfg, log)
	if runErr != nil {
		return runErr
	}

	log.Info("run complete",
		"run_id", sum.RunID,
		"state", sum.State,
		"new_listings", sum.NewListings,
		"notified", sum.Notified,
		"persisted", sum.Persisted,
	)
	return nil
}

func buildNotifier(cfg *config.Config, log *slog.Logger, dryRun bool) notify.Notifier {
	if dryRun || cfg.Notify.Backend == "noop" {
		return notify.NewNoOpNotifier(log)
	}
	return notify.NewLineNotifier(cfg.Line.AccessToken, cfg.Line.UserID,
		notify.WithEndpoint(cfg.Line.Endpoint),
	)
}

// pushMetrics sends run metrics to the configured Pushgateway. A push
// failure never changes the run outcome.
func pushMetrics(ctx context.Context, cfg *config.Config, log *slog.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		log.Warn("metrics push failed", "error", err)
		return
	}
	log.Debug("metrics pushed", "gateway", cfg.Metrics.PushgatewayURL)
}
