// Package config defines the scanner configuration and provides validation
// helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYSCAN_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Scan       ScanConfig       `toml:"scan"`
	Export     ExportConfig     `toml:"export"`
	S3         S3Config         `toml:"s3"`
	Notify     NotifyConfig     `toml:"notify"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds the Gamma API endpoint.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
}

// ScanConfig holds the pipeline parameters for one run.
type ScanConfig struct {
	PageSize       int      `toml:"page_size"`
	MaxMarkets     int      `toml:"max_markets"` // 0 = fetch everything
	PriceThreshold float64  `toml:"price_threshold"`
	Window         duration `toml:"window"`
	ExcludeTags    []string `toml:"exclude_tags"`
	ExcludeWords   []string `toml:"exclude_keywords"`
}

// ExportConfig holds the export sink parameters.
type ExportConfig struct {
	Path    string `toml:"path"` // empty means a dated default filename
	Sheet   string `toml:"sheet"`
	URLBase string `toml:"url_base"`
}

// S3Config holds optional object-storage upload parameters for the finished
// workbook.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials. Channels with empty
// credentials are simply not wired.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "48h", "30m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the standard scan parameters.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
		},
		Scan: ScanConfig{
			PageSize:       100,
			MaxMarkets:     0,
			PriceThreshold: 0.95,
			Window:         duration{48 * time.Hour},
			ExcludeTags:    []string{"sports", "esports", "crypto"},
			ExcludeWords: []string{
				"esports",
				"cs2",
				"cs:go",
				"dota",
				"league of legends",
				"valorant",
				"overwatch",
			},
		},
		Export: ExportConfig{
			Path:    "",
			Sheet:   "Markets",
			URLBase: "https://polymarket.com/event",
		},
		S3: S3Config{
			Enabled:        false,
			Region:         "us-east-1",
			Prefix:         "scans",
			ForcePathStyle: true,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}

	if c.Scan.PageSize < 1 || c.Scan.PageSize > 500 {
		errs = append(errs, fmt.Sprintf("scan: page_size must be 1-500, got %d", c.Scan.PageSize))
	}
	if c.Scan.MaxMarkets < 0 {
		errs = append(errs, "scan: max_markets must be >= 0")
	}
	if c.Scan.PriceThreshold <= 0.5 || c.Scan.PriceThreshold > 1 {
		errs = append(errs, fmt.Sprintf("scan: price_threshold must be in (0.5, 1], got %g", c.Scan.PriceThreshold))
	}
	if c.Scan.Window.Duration <= 0 {
		errs = append(errs, "scan: window must be positive")
	}

	if c.Export.URLBase == "" {
		errs = append(errs, "export: url_base must not be empty")
	}
	if c.Export.Path != "" && !strings.HasSuffix(c.Export.Path, ".xlsx") {
		errs = append(errs, fmt.Sprintf("export: path must end in .xlsx, got %q", c.Export.Path))
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
