package main

import (
	"errors"
	"fmt"
	"regexp"
)

// KnownMetrics is the set of metric names pushed by rent-notifier plus the
// recording rule names referenced by alerts.
var KnownMetrics = map[string]bool{
	// Run metrics.
	"rent_notifier_runs_total":                     true,
	"rent_notifier_run_duration_seconds":           true,
	"rent_notifier_last_success_timestamp_seconds": true,
	"rent_notifier_fetch_duration_seconds":         true,
	"rent_notifier_buildings_found":                true,
	"rent_notifier_listings_extracted_total":       true,
	"rent_notifier_rows_skipped_total":             true,
	"rent_notifier_new_listings_total":             true,
	"rent_notifier_digest_truncated_total":         true,
	"rent_notifier_notifications_sent_total":       true,
	"rent_notifier_notification_failures_total":    true,
	"rent_notifier_notification_duration_seconds":  true,
	"rent_notifier_history_appended_total":         true,

	// Recording rules.
	"rent_notifier:runs_failed:increase1d":           true,
	"rent_notifier:new_listings:increase1d":          true,
	"rent_notifier:notification_failures:increase1d": true,
	"rent_notifier:seconds_since_success":            true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir string
	// CRD writes PrometheusRule custom resources instead of plain rule files.
	CRD bool
}

// DefaultConfig returns a Config that writes plain rule files into
// ../../deploy/prometheus (relative to tools/rulegen/).
func DefaultConfig() Config {
	return Config{
		OutputDir: "../../deploy/prometheus",
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	return nil
}

var metricName = regexp.MustCompile(`rent_notifier[a-z_:0-9]*`)

// checkExprs reports every metric name referenced in exprs that is not in
// known.
func checkExprs(exprs []string, known map[string]bool) error {
	var errs []error
	for _, e := range exprs {
		for _, name := range metricName.FindAllString(e, -1) {
			if !known[name] {
				errs = append(errs, fmt.Errorf("unknown metric %q in %q", name, e))
			}
		}
	}
	return errors.Join(errs...)
}
