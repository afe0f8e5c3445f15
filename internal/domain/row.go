package domain

import "time"

// Row is one line of the final export: a single near-certain outcome with its
// parent-market context. Binary Yes/No markets produce exactly one Row covering
// both sides; N-ary markets produce one Row per qualifying outcome.
type Row struct {
	EventTitle     string
	Question       string
	Outcome        string
	YesPrice       *float64 // nil when not applicable
	NoPrice        *float64 // nil for N-ary rows
	CertaintySide  string   // "YES", "NO", or the outcome name
	Category       string
	Subcategory    string
	Volume         float64
	Liquidity      float64
	ResolveTime    time.Time
	HoursRemaining float64
	MarketURL      string

	// Reserved for a downstream review process; always empty here.
	AIConfidence string
	AIRationale  string
}
