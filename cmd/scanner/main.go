// Command scanner is a one-shot batch job that scans Polymarket for
// near-certain markets resolving inside the configured window and writes the
// qualifying outcomes to an xlsx workbook for manual review.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/polyscan/scanner/internal/app"
	"github.com/polyscan/scanner/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	output := flag.String("output", "", "export file path, overrides config")
	maxMarkets := flag.Int("max-markets", 0, "cap on total markets fetched, 0 = all")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Flag overrides.
	if *output != "" {
		cfg.Export.Path = *output
	}
	if *maxMarkets > 0 {
		cfg.Scan.MaxMarkets = *maxMarkets
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("scanner starting",
		slog.String("gamma_host", cfg.Polymarket.GammaHost),
		slog.Int("max_markets", cfg.Scan.MaxMarkets),
	)

	application := app.New(cfg, logger)

	// A run either completes or fails outright; Ctrl-C aborts it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("scan aborted")
			os.Exit(1)
		}
		logger.Error("scan failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	logger.Info("scanner stopped")
}
