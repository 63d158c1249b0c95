// Package config handles loading and validating the notifier configuration
// from an optional YAML file with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/rent-notifier/internal/digest"
	"github.com/donaldgifford/rent-notifier/internal/notify"
)

// DefaultSearchURL is the SUUMO rental search the notifier watches when no
// fetch.url is configured.
const DefaultSearchURL = "http://suumo.jp/jj/chintai/ichiran/FR301FC001/?ar=030&bs=040&ra=013&rn=0015&rn=0070&ek=001528860&ek=001527320&ek=001527360&ek=007050010&ek=007026200&ek=007028870&ek=007027320&cb=0.0&ct=15.0&mb=30&mt=9999999&md=01&ts=1&et=9999999&cn=9999999&co=1&shkr1=03&shkr2=03&shkr3=03&shkr4=03&sngz=&po1=09"

const (
	defaultOrigin    = "https://suumo.jp"
	defaultReferer   = "https://suumo.jp/"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Environment variables read when the matching config value is empty.
const (
	EnvAccessToken = "LINE_ACCESS_TOKEN"
	EnvUserID      = "LINE_USER_ID"
)

// Config is the top-level notifier configuration.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch"`
	Line    LineConfig    `yaml:"line"`
	Notify  NotifyConfig  `yaml:"notify"`
	History HistoryConfig `yaml:"history"`
	Digest  DigestConfig  `yaml:"digest"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// FetchConfig defines the search page request.
type FetchConfig struct {
	URL       string        `yaml:"url"`
	Origin    string        `yaml:"origin"` // prefixed to relative detail links
	UserAgent string        `yaml:"user_agent"`
	Referer   string        `yaml:"referer"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LineConfig defines LINE Messaging API push settings.
type LineConfig struct {
	Endpoint    string `yaml:"endpoint"`
	AccessToken string `yaml:"access_token"`
	UserID      string `yaml:"user_id"`
}

// NotifyConfig selects the notification backend.
type NotifyConfig struct {
	Backend string `yaml:"backend"` // line, noop
}

// HistoryConfig defines where previously notified urls are recorded.
type HistoryConfig struct {
	Driver string `yaml:"driver"` // file, memory, sqlite, postgres
	Path   string `yaml:"path"`   // file and sqlite
	DSN    string `yaml:"dsn"`    // postgres

	// RequireDelivery skips the history append when the push failed, so the
	// same listings are offered again next run. Off by default: a failed
	// push still marks the listings as seen.
	RequireDelivery bool `yaml:"require_delivery"`
}

// DigestConfig defines the message size budget.
type DigestConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// MetricsConfig defines the optional Prometheus Pushgateway target.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, console
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// LoadOption adjusts how Load validates the config.
type LoadOption func(*loadOptions)

type loadOptions struct {
	skipNotify bool
}

// WithoutNotify skips the notify and line checks, for commands that never
// send a message.
func WithoutNotify() LoadOption {
	return func(o *loadOptions) {
		o.skipNotify = true
	}
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. An empty path skips the file and builds the
// config from defaults and the environment alone.
func Load(path string, opts ...LoadOption) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg, o); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyFetchDefaults(&cfg.Fetch)
	applyLineDefaults(&cfg.Line)
	applyNotifyDefaults(&cfg.Notify)
	applyHistoryDefaults(&cfg.History)
	applyDigestDefaults(&cfg.Digest)
	applyMetricsDefaults(&cfg.Metrics)
	applyLoggingDefaults(&cfg.Logging)
}

func applyFetchDefaults(f *FetchConfig) {
	if f.URL == "" {
		f.URL = DefaultSearchURL
	}
	// The search page redirects plain http; ask for https directly.
	if rest, ok := strings.CutPrefix(f.URL, "http://"); ok {
		f.URL = "https://" + rest
	}
	if f.Origin == "" {
		f.Origin = defaultOrigin
	}
	f.Origin = strings.TrimSuffix(f.Origin, "/")
	if f.UserAgent == "" {
		f.UserAgent = defaultUserAgent
	}
	if f.Referer == "" {
		f.Referer = defaultReferer
	}
	if f.Timeout == 0 {
		f.Timeout = 10 * time.Second
	}
}

func applyLineDefaults(l *LineConfig) {
	if l.Endpoint == "" {
		l.Endpoint = notify.DefaultLineEndpoint
	}
	if l.AccessToken == "" {
		l.AccessToken = os.Getenv(EnvAccessToken)
	}
	if l.UserID == "" {
		l.UserID = os.Getenv(EnvUserID)
	}
}

func applyNotifyDefaults(n *NotifyConfig) {
	if n.Backend == "" {
		n.Backend = "line"
	}
}

func applyHistoryDefaults(h *HistoryConfig) {
	if h.Driver == "" {
		h.Driver = "file"
	}
	if h.Path == "" {
		switch h.Driver {
		case "file":
			h.Path = "sent_list.txt"
		case "sqlite":
			h.Path = "sent_list.db"
		}
	}
}

func applyDigestDefaults(d *DigestConfig) {
	if d.MaxChars == 0 {
		d.MaxChars = digest.DefaultMaxChars
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.Job == "" {
		m.Job = "rent_notifier"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config, o loadOptions) error {
	var errs []error

	if cfg.Fetch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must not be negative"))
	}
	if cfg.Digest.MaxChars < 0 {
		errs = append(errs, fmt.Errorf("digest.max_chars must not be negative"))
	}
	if cfg.Digest.MaxChars > digest.DefaultMaxChars {
		errs = append(errs, fmt.Errorf(
			"digest.max_chars must not exceed %d (got %d)", digest.DefaultMaxChars, cfg.Digest.MaxChars,
		))
	}

	switch {
	case o.skipNotify:
	case cfg.Notify.Backend == "line":
		if cfg.Line.AccessToken == "" {
			errs = append(errs, fmt.Errorf(
				"line.access_token (or %s) is required when notify backend is line", EnvAccessToken,
			))
		}
		if cfg.Line.UserID == "" {
			errs = append(errs, fmt.Errorf(
				"line.user_id (or %s) is required when notify backend is line", EnvUserID,
			))
		}
	case cfg.Notify.Backend == "noop":
	default:
		errs = append(errs, fmt.Errorf(
			"notify.backend must be one of: line, noop (got %q)", cfg.Notify.Backend,
		))
	}

	switch cfg.History.Driver {
	case "file", "sqlite":
		if cfg.History.Path == "" {
			errs = append(errs, fmt.Errorf(
				"history.path is required when driver is %s", cfg.History.Driver,
			))
		}
	case "postgres":
		if cfg.History.DSN == "" {
			errs = append(errs, fmt.Errorf("history.dsn is required when driver is postgres"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf(
			"history.driver must be one of: file, memory, sqlite, postgres (got %q)",
			cfg.History.Driver,
		))
	}

	switch cfg.Logging.Format {
	case "text", "json", "console":
	default:
		errs = append(errs, fmt.Errorf(
			"logging.format must be one of: text, json, console (got %q)", cfg.Logging.Format,
		))
	}

	return errors.Join(errs...)
}
