package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/rent-notifier/internal/config"
	"github.com/donaldgifford/rent-notifier/internal/history"
)

func historyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the listing urls that have already been notified",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(config.WithoutNotify())
			if err != nil {
				return err
			}

			store, err := history.Open(cmd.Context(), cfg.History)
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer func() { _ = store.Close() }()

			seen, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			urls := slices.Sorted(maps.Keys(seen))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"driver": cfg.History.Driver,
					"count":  len(urls),
					"urls":   urls,
				})
			}

			fmt.Fprintf(out, "%d urls recorded (%s)\n", len(urls), cfg.History.Driver)
			for _, u := range urls {
				fmt.Fprintln(out, u)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
