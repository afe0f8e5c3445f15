// Package app wires the scanner's dependencies and drives one complete run:
// scan, export, optional upload, optional notification.
package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/polyscan/scanner/internal/config"
	"github.com/polyscan/scanner/internal/export"
)

// App is the root application object for a single scan run.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run executes one scan end to end. The export file is written only after the
// full row set is final, so a failure anywhere in the pipeline leaves no
// partial output behind. Upload and notification failures after a successful
// export are logged but do not fail the run.
func (a *App) Run(ctx context.Context) error {
	deps, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}

	started := time.Now().UTC()

	rows, stats, err := deps.Scanner.Run(ctx)
	if err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	outPath := a.cfg.Export.Path
	if outPath == "" {
		outPath = export.DefaultFilename(started)
	}

	writer := export.NewXLSXWriter(a.cfg.Export.Sheet)
	data, err := writer.WriteFile(outPath, rows)
	if err != nil {
		return fmt.Errorf("app: export: %w", err)
	}

	a.logger.Info("export written",
		slog.String("path", outPath),
		slog.Int("rows", len(rows)),
		slog.Int("bytes", len(data)),
	)

	if deps.BlobWriter != nil {
		key := path.Join(a.cfg.S3.Prefix, path.Base(outPath))
		contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if err := deps.BlobWriter.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
			a.logger.Error("workbook upload failed, local file kept",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else {
			a.logger.Info("workbook uploaded", slog.String("key", key))
		}
	}

	if deps.Notifier.Enabled() {
		msg := fmt.Sprintf(
			"%d rows from %d markets (tag-excluded %d, keyword-excluded %d) -> %s",
			stats.Rows, stats.Fetched, stats.TagExcluded, stats.KeywordExcluded, outPath,
		)
		if err := deps.Notifier.Notify(ctx, "Market scan complete", msg); err != nil {
			a.logger.Error("completion notification failed", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("run finished",
		slog.Duration("elapsed", time.Since(started)),
		slog.Any("stats", stats),
	)
	return nil
}
