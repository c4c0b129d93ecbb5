// Package config provides configuration loading for the whale monitor.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "200ms" parse.
type Duration time.Duration

// UnmarshalYAML parses either a duration string or integer nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the monitor configuration.
type Config struct {
	// Scan settings
	Scan ScanConfig `yaml:"scan"`

	// Severity tier cutoffs
	Severity SeverityConfig `yaml:"severity"`

	// Seen-order ledger settings
	Ledger LedgerConfig `yaml:"ledger"`

	// Alert feed settings
	Feed FeedConfig `yaml:"feed"`

	// Market listing retry settings
	Listing ListingConfig `yaml:"listing"`

	// Feed server settings
	Server ServerConfig `yaml:"server"`

	// Discord webhook URL, environment only (DISCORD_WEBHOOK_URL).
	// Empty disables notification; ledger and feed updates still run.
	DiscordWebhookURL string `yaml:"-"`
}

// ScanConfig contains order-book scanning settings.
type ScanConfig struct {
	// Minimum USD notional for an order to qualify as a whale order
	MinOrderValueUSD float64 `yaml:"min_order_value_usd"`

	// How many top-volume events to scan
	MarketsLimit int `yaml:"markets_limit"`

	// Courtesy pause between order-book fetches
	BookDelay Duration `yaml:"book_delay"`
}

// SeverityConfig contains the severity tier cutoffs in USD.
type SeverityConfig struct {
	HighUSD   float64 `yaml:"high_usd"`
	MediumUSD float64 `yaml:"medium_usd"`
}

// LedgerConfig contains seen-order ledger settings.
type LedgerConfig struct {
	// Path to the ledger JSON file
	Path string `yaml:"path"`

	// How long a seen order stays deduplicated
	Retention Duration `yaml:"retention"`
}

// FeedConfig contains alert feed settings.
type FeedConfig struct {
	// Path to the alerts JSON file consumed by the front end
	Path string `yaml:"path"`

	// Maximum records kept in the feed
	MaxRecords int `yaml:"max_records"`
}

// ListingConfig contains retry settings for the market-listing fetch.
type ListingConfig struct {
	MaxAttempts    int      `yaml:"max_attempts"`
	InitialBackoff Duration `yaml:"initial_backoff"`
	BackoffFactor  float64  `yaml:"backoff_factor"`
}

// ServerConfig contains feed server settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			MinOrderValueUSD: 5000,
			MarketsLimit:     10,
			BookDelay:        Duration(200 * time.Millisecond),
		},
		Severity: SeverityConfig{
			HighUSD: 50000,
			// Matches the alert threshold, so every alerted order is at
			// least medium unless the cutoff is raised.
			MediumUSD: 5000,
		},
		Ledger: LedgerConfig{
			Path:      "data/seen_orders.json",
			Retention: Duration(24 * time.Hour),
		},
		Feed: FeedConfig{
			Path:       "data/alerts.json",
			MaxRecords: 50,
		},
		Listing: ListingConfig{
			MaxAttempts:    3,
			InitialBackoff: Duration(2 * time.Second),
			BackoffFactor:  2.0,
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment
// overrides. A .env file in the working directory is honored in development.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overlays environment variables onto the configuration.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	c.DiscordWebhookURL = getEnv("DISCORD_WEBHOOK_URL", c.DiscordWebhookURL)
	c.Scan.MinOrderValueUSD = getEnvFloat("MIN_ORDER_VALUE_USD", c.Scan.MinOrderValueUSD)
	c.Ledger.Path = getEnv("LEDGER_PATH", c.Ledger.Path)
	c.Feed.Path = getEnv("ALERTS_PATH", c.Feed.Path)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Scan.MinOrderValueUSD <= 0 {
		return fmt.Errorf("scan.min_order_value_usd must be positive")
	}
	if c.Scan.MarketsLimit < 1 {
		return fmt.Errorf("scan.markets_limit must be at least 1")
	}
	if c.Severity.HighUSD < c.Severity.MediumUSD {
		return fmt.Errorf("severity.high_usd must be >= severity.medium_usd")
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required")
	}
	if c.Ledger.Retention <= 0 {
		return fmt.Errorf("ledger.retention must be positive")
	}
	if c.Feed.Path == "" {
		return fmt.Errorf("feed.path is required")
	}
	if c.Feed.MaxRecords < 1 {
		return fmt.Errorf("feed.max_records must be at least 1")
	}
	if c.Listing.MaxAttempts < 1 {
		return fmt.Errorf("listing.max_attempts must be at least 1")
	}
	if c.Listing.BackoffFactor < 1 {
		return fmt.Errorf("listing.backoff_factor must be at least 1")
	}
	return nil
}

// MaskedWebhookURL returns the webhook URL with most characters hidden for logging.
func (c *Config) MaskedWebhookURL() string {
	s := c.DiscordWebhookURL
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
