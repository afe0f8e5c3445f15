package scan

import (
	"strings"
	"time"

	"github.com/polyscan/scanner/internal/domain"
)

// DropReason classifies why a market was excluded by the filter chain.
type DropReason string

const (
	DropNone           DropReason = ""
	DropNotActive      DropReason = "not_active"
	DropTagExcluded    DropReason = "tag_excluded"
	DropKeywordMatch   DropReason = "keyword_excluded"
	DropBelowThreshold DropReason = "below_threshold"
	DropNoEndDate      DropReason = "no_end_date"
	DropOutsideWindow  DropReason = "outside_window"
)

// Filter applies the exclusion and inclusion predicates to normalized markets.
// The reference instant is captured once per run so the window stays consistent
// across the whole pass.
type Filter struct {
	exclusions TagSet
	keywords   []string // lowercased substrings
	threshold  float64
	now        time.Time
	window     time.Duration
}

// NewFilter creates a Filter. keywords are matched case-insensitively as
// substrings of the market's question, event title, category and subcategory.
func NewFilter(exclusions TagSet, keywords []string, threshold float64, now time.Time, window time.Duration) *Filter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Filter{
		exclusions: exclusions,
		keywords:   lowered,
		threshold:  threshold,
		now:        now,
		window:     window,
	}
}

// Passes evaluates the predicate chain in order, short-circuiting on the first
// failure. Exclusion rules fire regardless of how many inclusion rules the
// market satisfies.
func (f *Filter) Passes(m domain.Market) (bool, DropReason) {
	// 1. Status: only open markets.
	if !m.Active || m.Closed {
		return false, DropNotActive
	}

	// 2. Tag exclusion against the resolved set.
	if f.exclusions.Matches(m.Tags) {
		return false, DropTagExcluded
	}

	// 3. Keyword exclusion. Deliberately redundant with the tag rule: tag
	// metadata on the source is not guaranteed complete.
	if f.matchesKeyword(m) {
		return false, DropKeywordMatch
	}

	// 4. Price threshold: at least one near-certain outcome. The flattener
	// re-evaluates per outcome; this gate only rejects markets with none.
	if !f.hasQualifyingOutcome(m) {
		return false, DropBelowThreshold
	}

	// 5. Time window. A missing resolve date fails the window rather than
	// defaulting to "now".
	if m.EndDate == nil {
		return false, DropNoEndDate
	}
	if m.EndDate.Before(f.now) || m.EndDate.After(f.now.Add(f.window)) {
		return false, DropOutsideWindow
	}

	return true, DropNone
}

// matchesKeyword reports whether any exclusion keyword occurs in the market's
// descriptive text fields.
func (f *Filter) matchesKeyword(m domain.Market) bool {
	haystack := strings.ToLower(m.Question + " " + m.EventTitle + " " + m.Category + " " + m.Subcategory)
	for _, k := range f.keywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}

// hasQualifyingOutcome reports whether any outcome price meets the certainty
// threshold. For a strictly two-outcome market an outcome at or below
// 1-threshold counts as the complementary side qualifying.
func (f *Filter) hasQualifyingOutcome(m domain.Market) bool {
	inverted := m.IsBinary()
	for _, o := range m.Outcomes {
		if o.Price >= f.threshold {
			return true
		}
		if inverted && o.Price <= 1-f.threshold {
			return true
		}
	}
	return false
}
