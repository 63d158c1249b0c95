package rules

// AlertRules returns the operational alerts for the notifier.
func AlertRules() PrometheusRule {
	return newRule("rent-notifier-alerts", RuleGroup{
		Name: "rent-notifier-alerts",
		Rules: []Rule{
			{
				Alert: "RentNotifierStale",
				Expr:  `rent_notifier:seconds_since_success > 6 * 3600`,
				For:   "10m",
				Labels: map[string]string{
					"severity": "critical",
				},
				Annotations: map[string]string{
					"summary":     "rent-notifier has not completed a run in 6 hours",
					"description": "No run has finished without a fatal error for more than 6 hours. Check the timer and the search page.",
				},
			},
			{
				Alert: "RentNotifierRunsFailing",
				Expr:  `rent_notifier:runs_failed:increase1d > 3`,
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "rent-notifier runs are failing",
					"description": "More than 3 runs failed in the last day (fetch, parse or history errors).",
				},
			},
			{
				Alert: "RentNotifierNotificationFailures",
				Expr:  `rent_notifier:notification_failures:increase1d > 0`,
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "LINE push failures detected",
					"description": "One or more digests could not be delivered. Listings may have been recorded as sent without reaching the recipient.",
				},
			},
			{
				Alert: "RentNotifierNoRowsExtracted",
				Expr:  `rent_notifier_buildings_found == 0`,
				For:   "1d",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "search page returned no buildings for a day",
					"description": "The page may have changed its markup or the search returns nothing.",
				},
			},
		},
	})
}
