package scan

import (
	"strings"

	"github.com/polyscan/scanner/internal/domain"
)

// Candidate is one qualifying outcome of a market, before final row fields are
// computed.
type Candidate struct {
	Market        domain.Market
	OutcomeLabel  string
	YesPrice      *float64
	NoPrice       *float64
	CertaintySide string
}

// Flatten expands a market into one Candidate per near-certain outcome.
//
// A canonical Yes/No market collapses to at most one candidate carrying both
// sides' prices; when both sides somehow qualify at once, YES wins. Any other
// market emits one candidate per outcome at or above the threshold, with the
// outcome's own name as the certainty side and no NO price. In a strictly
// two-outcome market an outcome at or below 1-threshold promotes its
// complement, carrying the implied complementary price.
//
// Zero candidates is a normal result, not an error.
func Flatten(m domain.Market, threshold float64) []Candidate {
	if yes, no, ok := canonicalBinary(m); ok {
		return flattenYesNo(m, yes, no, threshold)
	}
	return flattenNary(m, threshold)
}

// canonicalBinary extracts the Yes and No outcomes when the market is exactly
// the canonical pair, in either order.
func canonicalBinary(m domain.Market) (yes, no domain.Outcome, ok bool) {
	if !m.IsBinary() {
		return yes, no, false
	}
	a, b := m.Outcomes[0], m.Outcomes[1]
	switch {
	case strings.EqualFold(a.Name, "Yes") && strings.EqualFold(b.Name, "No"):
		return a, b, true
	case strings.EqualFold(a.Name, "No") && strings.EqualFold(b.Name, "Yes"):
		return b, a, true
	}
	return yes, no, false
}

func flattenYesNo(m domain.Market, yes, no domain.Outcome, threshold float64) []Candidate {
	var side string
	switch {
	case yes.Price >= threshold:
		side = "YES" // takes precedence when both sides qualify
	case no.Price >= threshold:
		side = "NO"
	case yes.Price <= 1-threshold:
		side = "NO" // inverted certainty: Yes collapsed, No is the near-certain side
	case no.Price <= 1-threshold:
		side = "YES"
	default:
		return nil
	}

	yp, np := yes.Price, no.Price
	return []Candidate{{
		Market:        m,
		OutcomeLabel:  side,
		YesPrice:      &yp,
		NoPrice:       &np,
		CertaintySide: side,
	}}
}

func flattenNary(m domain.Market, threshold float64) []Candidate {
	var out []Candidate
	for i, o := range m.Outcomes {
		price, ok := qualifyingPrice(m, i, threshold)
		if !ok {
			continue
		}
		p := price
		out = append(out, Candidate{
			Market:        m,
			OutcomeLabel:  o.Name,
			YesPrice:      &p,
			CertaintySide: o.Name,
		})
	}
	return out
}

// qualifyingPrice returns the certainty price for outcome i, applying the
// two-outcome inversion rule: when the only other outcome sits at or below
// 1-threshold, this outcome qualifies at the implied complementary price.
func qualifyingPrice(m domain.Market, i int, threshold float64) (float64, bool) {
	o := m.Outcomes[i]
	if o.Price >= threshold {
		return o.Price, true
	}
	if m.IsBinary() {
		other := m.Outcomes[1-i]
		if other.Price <= 1-threshold {
			return 1 - other.Price, true
		}
	}
	return 0, false
}
