package rules

// RecordingRules returns the pre-computed expressions used by the alert rules.
// The job pushes once per run, so rates are taken over a day rather than
// minutes.
func RecordingRules() PrometheusRule {
	return newRule("rent-notifier-recording-rules", RuleGroup{
		Name: "rent-notifier-recording",
		Rules: []Rule{
			{
				Record: "rent_notifier:runs_failed:increase1d",
				Expr:   `sum(increase(rent_notifier_runs_total{outcome="failed"}[1d]))`,
			},
			{
				Record: "rent_notifier:new_listings:increase1d",
				Expr:   `sum(increase(rent_notifier_new_listings_total[1d]))`,
			},
			{
				Record: "rent_notifier:notification_failures:increase1d",
				Expr:   `sum(increase(rent_notifier_notification_failures_total[1d]))`,
			},
			{
				Record: "rent_notifier:seconds_since_success",
				Expr:   `time() - max(rent_notifier_last_success_timestamp_seconds)`,
			},
		},
	})
}
