// Package cmd implements the CLI commands for rent-notifier.
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/rent-notifier/internal/config"
	"github.com/donaldgifford/rent-notifier/pkg/logger"
)

const envPrefix = "RENT_NOTIFIER"

var rootCmd = &cobra.Command{
	Use:   "rent-notifier",
	Short: "Notify new SUUMO rental listings over LINE",
	Long: "rent-notifier fetches a SUUMO rental search page, finds the listings\n" +
		"it has not reported before, and pushes them as one LINE message.\n" +
		"Run it from cron or a systemd timer; each invocation is one pass.",
	SilenceUsage: true,
	RunE:         runNotifier,
}

// Root returns the root cobra command.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initEnv)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file path (defaults and environment only when empty)")
	flags.String("env-file", ".env", "dotenv file loaded before the config is read")
	flags.String("log-level", "", "override logging.level (debug, info, warn, error)")
	flags.String("log-format", "", "override logging.format (text, json, console)")
	rootCmd.Flags().Bool("dry-run", false, "discard the notification and leave the history untouched")

	cobra.CheckErr(viper.BindPFlag("config", flags.Lookup("config")))
	cobra.CheckErr(viper.BindPFlag("env-file", flags.Lookup("env-file")))
	cobra.CheckErr(viper.BindPFlag("log-level", flags.Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("log-format", flags.Lookup("log-format")))
	cobra.CheckErr(viper.BindPFlag("dry-run", rootCmd.Flags().Lookup("dry-run")))

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(versionCommand())
}

func initEnv() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the dotenv file and the config, applies the logging
// flag overrides and builds the logger.
func loadConfig(opts ...config.LoadOption) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(viper.GetString("env-file")); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(viper.GetString("config"), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if lvl := viper.GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if f := viper.GetString("log-format"); f != "" {
		cfg.Logging.Format = f
	}

	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format), nil
}
