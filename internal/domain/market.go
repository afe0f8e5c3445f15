package domain

import "time"

// Tag is a category tag attached to a market, as exposed by the Gamma API.
type Tag struct {
	Slug  string
	Label string
}

// ResolvedTag is a tag resolved through the tag-lookup endpoint, including its
// numeric identifier.
type ResolvedTag struct {
	ID    string
	Slug  string
	Label string
}

// Outcome is one side of a market with its current price in [0,1].
type Outcome struct {
	Name  string
	Price float64
}

// Market is a normalized Polymarket prediction market. It is the pipeline's
// in-memory shape for one run; raw API records are discarded after
// normalization.
type Market struct {
	ID          string
	Question    string
	EventTitle  string
	Slug        string
	Active      bool
	Closed      bool
	Category    string
	Subcategory string
	Tags        []Tag
	Outcomes    []Outcome
	EndDate     *time.Time // nil when the API omits the resolve date
	Volume      float64
	Liquidity   float64
}

// IsBinary reports whether the market has exactly two outcomes.
func (m Market) IsBinary() bool {
	return len(m.Outcomes) == 2
}
