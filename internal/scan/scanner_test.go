package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyscan/scanner/internal/domain"
	"github.com/polyscan/scanner/internal/platform/polymarket"
)

// fakeFetcher pages through a fixed slice like the listing API does.
type fakeFetcher struct {
	markets []polymarket.APIMarket
	err     error
	calls   int
}

func (f *fakeFetcher) GetMarkets(_ context.Context, limit, offset int) ([]polymarket.APIMarket, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.markets) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.markets) {
		end = len(f.markets)
	}
	return f.markets[offset:end], nil
}

func apiMarket(id, question, endDate string, outcomes, prices string, tags ...polymarket.APITag) polymarket.APIMarket {
	return polymarket.APIMarket{
		ID:            id,
		Question:      question,
		Slug:          "slug-" + id,
		Active:        true,
		Closed:        false,
		Outcomes:      outcomes,
		OutcomePrices: prices,
		EndDate:       endDate,
		Tags:          tags,
		Events:        []polymarket.APIEventRef{{Title: "Event " + id, Slug: "event-" + id}},
	}
}

func newTestScanner(fetcher MarketFetcher, lookup TagLookup, opts Options) *Scanner {
	if lookup == nil {
		lookup = &fakeLookup{tags: map[string]domain.ResolvedTag{
			"sports":  {ID: "1", Slug: "sports", Label: "Sports"},
			"esports": {ID: "2", Slug: "esports", Label: "Esports"},
			"crypto":  {ID: "3", Slug: "crypto", Label: "Crypto"},
		}}
	}
	s := NewScanner(fetcher, NewTagResolver(lookup, discard()), opts, discard())
	s.nowFunc = func() time.Time { return testNow }
	return s
}

func defaultOpts() Options {
	return Options{
		PageSize:       100,
		PriceThreshold: 0.95,
		Window:         48 * time.Hour,
		ExcludeSlugs:   []string{"sports", "esports", "crypto"},
		Keywords:       defaultKeywords,
		URLBase:        "https://polymarket.com/event",
	}
}

func TestScannerEndToEnd(t *testing.T) {
	in24h := testNow.Add(24 * time.Hour).Format(time.RFC3339)
	in6h := testNow.Add(6 * time.Hour).Format(time.RFC3339)
	in50h := testNow.Add(50 * time.Hour).Format(time.RFC3339)

	fetcher := &fakeFetcher{markets: []polymarket.APIMarket{
		// Qualifying binary market, resolves in 24h.
		apiMarket("1", "Bill passes?", in24h, `["Yes","No"]`, `["0.97","0.03"]`),
		// Near-certain but tagged esports: excluded regardless of price.
		apiMarket("2", "Team wins major?", in24h, `["Yes","No"]`, `["0.99","0.01"]`,
			polymarket.APITag{Slug: "esports", Label: "Esports"}),
		// Keyword net: no tags, but the question mentions dota.
		apiMarket("3", "Dota grand final over 3 maps?", in24h, `["Yes","No"]`, `["0.98","0.02"]`),
		// Malformed price array: dropped alone, siblings unaffected.
		apiMarket("4", "Broken?", in24h, `["Yes","No"]`, `garbage`),
		// Missing resolve date: skipped with a recorded reason.
		apiMarket("5", "Dateless?", "", `["Yes","No"]`, `["0.99","0.01"]`),
		// Outside the 48h window.
		apiMarket("6", "Too far out?", in50h, `["Yes","No"]`, `["0.99","0.01"]`),
		// 4-way market with one qualifying outcome, resolves sooner than #1.
		apiMarket("7", "Who wins the primary?", in6h,
			`["Alice","Bob","Carol","Dave"]`, `["0.96","0.01","0.02","0.01"]`),
		// Inverted binary.
		apiMarket("8", "Shutdown avoided?", in24h, `["Yes","No"]`, `["0.02","0.98"]`),
	}}

	rows, stats, err := newTestScanner(fetcher, nil, defaultOpts()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 3)

	// Soonest resolve first.
	assert.Equal(t, "Who wins the primary?", rows[0].Question)
	assert.Equal(t, "Alice", rows[0].Outcome)
	assert.Nil(t, rows[0].NoPrice)
	assert.Equal(t, 0.96, *rows[0].YesPrice)

	assert.Equal(t, "Bill passes?", rows[1].Question)
	assert.Equal(t, "YES", rows[1].CertaintySide)
	assert.Equal(t, "https://polymarket.com/event/slug-1", rows[1].MarketURL)

	assert.Equal(t, "Shutdown avoided?", rows[2].Question)
	assert.Equal(t, "NO", rows[2].CertaintySide)

	assert.Equal(t, 8, stats.Fetched)
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, 1, stats.TagExcluded)
	assert.Equal(t, 1, stats.KeywordExcluded)
	assert.Equal(t, 1, stats.NoEndDate)
	assert.Equal(t, 1, stats.OutsideWindow)
	assert.Equal(t, 3, stats.Rows)

	// Every emitted row satisfies the window and certainty invariants.
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.HoursRemaining, 0.0)
		assert.LessOrEqual(t, r.HoursRemaining, 48.0)
		assert.Empty(t, r.AIConfidence)
		assert.Empty(t, r.AIRationale)
	}
}

func TestScannerIdempotent(t *testing.T) {
	in24h := testNow.Add(24 * time.Hour).Format(time.RFC3339)
	markets := []polymarket.APIMarket{
		apiMarket("1", "A?", in24h, `["Yes","No"]`, `["0.97","0.03"]`),
		apiMarket("2", "B?", in24h, `["Yes","No"]`, `["0.02","0.98"]`),
	}

	run := func() []domain.Row {
		rows, _, err := newTestScanner(&fakeFetcher{markets: markets}, nil, defaultOpts()).Run(context.Background())
		require.NoError(t, err)
		return rows
	}

	assert.Equal(t, run(), run())
}

func TestScannerPaginates(t *testing.T) {
	in24h := testNow.Add(24 * time.Hour).Format(time.RFC3339)
	var markets []polymarket.APIMarket
	for i := 0; i < 250; i++ {
		markets = append(markets, apiMarket(fmt.Sprintf("%d", i), "Q?", in24h, `["Yes","No"]`, `["0.97","0.03"]`))
	}

	fetcher := &fakeFetcher{markets: markets}
	rows, stats, err := newTestScanner(fetcher, nil, defaultOpts()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 250, stats.Fetched)
	assert.Len(t, rows, 250)
	// Three pages: 100 + 100 + 50 (short page stops the loop).
	assert.Equal(t, 3, fetcher.calls)
}

func TestScannerMaxMarketsCap(t *testing.T) {
	in24h := testNow.Add(24 * time.Hour).Format(time.RFC3339)
	var markets []polymarket.APIMarket
	for i := 0; i < 250; i++ {
		markets = append(markets, apiMarket(fmt.Sprintf("%d", i), "Q?", in24h, `["Yes","No"]`, `["0.97","0.03"]`))
	}

	opts := defaultOpts()
	opts.MaxMarkets = 120

	_, stats, err := newTestScanner(&fakeFetcher{markets: markets}, nil, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, stats.Fetched)
}

func TestScannerFetchFailureIsFatal(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("gateway timeout")}
	_, _, err := newTestScanner(fetcher, nil, defaultOpts()).Run(context.Background())
	require.Error(t, err)
}

// A missing exclusion tag narrows the set but never stops the scan.
func TestScannerRunsWithPartialTagSet(t *testing.T) {
	in24h := testNow.Add(24 * time.Hour).Format(time.RFC3339)
	fetcher := &fakeFetcher{markets: []polymarket.APIMarket{
		apiMarket("1", "Match result?", in24h, `["Yes","No"]`, `["0.99","0.01"]`,
			polymarket.APITag{Slug: "sports", Label: "Sports"}),
	}}

	// Only "sports" resolves; esports and crypto are missing upstream.
	lookup := &fakeLookup{tags: map[string]domain.ResolvedTag{
		"sports": {ID: "1", Slug: "sports", Label: "Sports"},
	}}

	rows, stats, err := newTestScanner(fetcher, lookup, defaultOpts()).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, stats.TagExcluded)
}
