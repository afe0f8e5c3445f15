// Package scan implements the market-scanning pipeline: exclusion tag
// resolution, pagination over the market listing, normalization, the filter
// chain, per-outcome flattening, and final row computation.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polyscan/scanner/internal/domain"
	"github.com/polyscan/scanner/internal/platform/polymarket"
)

// MarketFetcher retrieves one page of raw markets from the listing API.
type MarketFetcher interface {
	GetMarkets(ctx context.Context, limit, offset int) ([]polymarket.APIMarket, error)
}

// Options holds the tunable parameters of one scan run.
type Options struct {
	PageSize       int
	MaxMarkets     int // 0 means no cap
	PriceThreshold float64
	Window         time.Duration
	ExcludeSlugs   []string
	Keywords       []string
	URLBase        string
}

// Scanner runs the whole pipeline as a single one-shot batch: fetch every
// page, normalize, filter, flatten, finalize, sort.
type Scanner struct {
	fetcher  MarketFetcher
	resolver *TagResolver
	opts     Options
	logger   *slog.Logger

	// nowFunc is swapped in tests to freeze the reference instant.
	nowFunc func() time.Time
}

// NewScanner creates a Scanner.
func NewScanner(fetcher MarketFetcher, resolver *TagResolver, opts Options, logger *slog.Logger) *Scanner {
	return &Scanner{
		fetcher:  fetcher,
		resolver: resolver,
		opts:     opts,
		logger:   logger.With(slog.String("component", "scanner")),
		nowFunc:  time.Now,
	}
}

// Run executes one scan and returns the sorted row set together with the run
// statistics. A fetch or tag-resolution transport failure aborts the run;
// per-record problems only skip the affected market.
func (s *Scanner) Run(ctx context.Context) ([]domain.Row, *Stats, error) {
	exclusions, _, err := s.resolver.Resolve(ctx, s.opts.ExcludeSlugs)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: resolve exclusion tags: %w", err)
	}

	raws, err := s.fetchAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	// Captured exactly once so the window filter and hours-remaining agree on
	// the same reference instant no matter how long the fetch took.
	now := s.nowFunc().UTC()

	rows, stats := s.process(raws, exclusions, now)

	SortRows(rows)
	stats.Rows = len(rows)

	s.logger.Info("scan complete", slog.Any("stats", stats))
	return rows, stats, nil
}

// fetchAll paginates through the listing until a short or empty page, honoring
// the optional MaxMarkets cap.
func (s *Scanner) fetchAll(ctx context.Context) ([]polymarket.APIMarket, error) {
	pageSize := s.opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var all []polymarket.APIMarket
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan: fetch cancelled: %w", err)
		}

		page, err := s.fetcher.GetMarkets(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("scan: fetch markets at offset %d: %w", offset, err)
		}

		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		s.logger.Debug("fetched market batch",
			slog.Int("batch_size", len(page)),
			slog.Int("total", len(all)),
			slog.Int("offset", offset),
		)

		if s.opts.MaxMarkets > 0 && len(all) >= s.opts.MaxMarkets {
			all = all[:s.opts.MaxMarkets]
			break
		}

		if len(page) < pageSize {
			break
		}

		offset += pageSize
	}

	s.logger.Info("market fetch complete", slog.Int("total", len(all)))
	return all, nil
}

// process runs normalization, filtering, flattening and finalization over the
// fetched records. Dropping one market never affects any other.
func (s *Scanner) process(raws []polymarket.APIMarket, exclusions TagSet, now time.Time) ([]domain.Row, *Stats) {
	stats := &Stats{Fetched: len(raws)}

	filter := NewFilter(exclusions, s.opts.Keywords, s.opts.PriceThreshold, now, s.opts.Window)
	finalizer := NewFinalizer(now, s.opts.URLBase)

	var rows []domain.Row
	for i := range raws {
		m, err := raws[i].Normalize()
		if err != nil {
			stats.Malformed++
			s.logger.Warn("dropping malformed market",
				slog.String("market_id", raws[i].ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		ok, reason := filter.Passes(m)
		if !ok {
			stats.count(reason)
			if reason == DropNoEndDate {
				s.logger.Warn("skipping market without resolve date",
					slog.String("market_id", m.ID),
					slog.String("question", m.Question),
				)
			}
			continue
		}
		stats.Passed++

		for _, c := range Flatten(m, s.opts.PriceThreshold) {
			rows = append(rows, finalizer.Row(c))
		}
	}

	return rows, stats
}
