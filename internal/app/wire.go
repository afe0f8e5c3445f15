package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/polyscan/scanner/internal/blob/s3"
	"github.com/polyscan/scanner/internal/config"
	"github.com/polyscan/scanner/internal/domain"
	"github.com/polyscan/scanner/internal/notify"
	"github.com/polyscan/scanner/internal/platform/polymarket"
	"github.com/polyscan/scanner/internal/scan"
)

// Dependencies bundles everything App.Run needs: the Gamma client (both the
// market listing and the tag lookup), the scanner, and the optional upload and
// notification collaborators.
type Dependencies struct {
	Scanner    *scan.Scanner
	BlobWriter domain.BlobWriter // nil unless S3 upload is enabled
	Notifier   *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	gamma := polymarket.NewGammaClient(cfg.Polymarket.GammaHost)

	resolver := scan.NewTagResolver(gamma, logger)
	scanner := scan.NewScanner(gamma, resolver, scan.Options{
		PageSize:       cfg.Scan.PageSize,
		MaxMarkets:     cfg.Scan.MaxMarkets,
		PriceThreshold: cfg.Scan.PriceThreshold,
		Window:         cfg.Scan.Window.Duration,
		ExcludeSlugs:   cfg.Scan.ExcludeTags,
		Keywords:       cfg.Scan.ExcludeWords,
		URLBase:        cfg.Export.URLBase,
	}, logger)

	deps := &Dependencies{Scanner: scanner}

	if cfg.S3.Enabled {
		client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.BlobWriter = s3blob.NewWriter(client)
	}

	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, nil
}
