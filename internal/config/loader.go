package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYSCAN_* environment variable overrides, and
// returns the final Config. When path is empty only defaults and overrides
// apply. The returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This lets
// operators inject credentials at deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Polymarket.GammaHost, "POLYSCAN_GAMMA_HOST")

	setInt(&cfg.Scan.PageSize, "POLYSCAN_SCAN_PAGE_SIZE")
	setInt(&cfg.Scan.MaxMarkets, "POLYSCAN_SCAN_MAX_MARKETS")
	setFloat64(&cfg.Scan.PriceThreshold, "POLYSCAN_SCAN_PRICE_THRESHOLD")
	setDuration(&cfg.Scan.Window, "POLYSCAN_SCAN_WINDOW")
	setStringSlice(&cfg.Scan.ExcludeTags, "POLYSCAN_SCAN_EXCLUDE_TAGS")
	setStringSlice(&cfg.Scan.ExcludeWords, "POLYSCAN_SCAN_EXCLUDE_KEYWORDS")

	setStr(&cfg.Export.Path, "POLYSCAN_EXPORT_PATH")
	setStr(&cfg.Export.Sheet, "POLYSCAN_EXPORT_SHEET")
	setStr(&cfg.Export.URLBase, "POLYSCAN_EXPORT_URL_BASE")

	setBool(&cfg.S3.Enabled, "POLYSCAN_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "POLYSCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYSCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYSCAN_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "POLYSCAN_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "POLYSCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYSCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "POLYSCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "POLYSCAN_S3_FORCE_PATH_STYLE")

	setStr(&cfg.Notify.TelegramToken, "POLYSCAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYSCAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYSCAN_NOTIFY_DISCORD_WEBHOOK_URL")

	setStr(&cfg.LogLevel, "POLYSCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
