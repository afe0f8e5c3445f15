package polymarket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/polyscan/scanner/internal/domain"
)

// Normalization drop reasons. Each applies to a single market record; no
// normalization failure is ever fatal to a run.
var (
	ErrBadOutcomes    = errors.New("unparsable outcome array")
	ErrBadPrices      = errors.New("unparsable outcome price array")
	ErrLengthMismatch = errors.New("outcome and price arrays differ in length")
	ErrTooFewOutcomes = errors.New("fewer than 2 outcomes")
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. The Gamma API
// sends volume and liquidity both ways depending on the endpoint. Missing or
// unparsable values decode to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexFloat(v)
	}
	return nil
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APITag represents a tag as returned by the Gamma API.
type APITag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// APIEventRef is the parent-event reference embedded in a market record.
type APIEventRef struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// APIMarket represents a market as returned by the Gamma API /markets listing.
type APIMarket struct {
	ID            string        `json:"id"`
	Question      string        `json:"question"`
	Slug          string        `json:"slug"`
	Active        flexBool      `json:"active"` // API may send bool or "true"/"false" string
	Closed        flexBool      `json:"closed"`
	Category      string        `json:"category"`
	Subcategory   string        `json:"subcategory"`
	Outcomes      string        `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string        `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.97\",\"0.03\"]"
	EndDate       string        `json:"endDate"`       // RFC 3339, may be empty
	Volume        flexFloat     `json:"volume"`
	Liquidity     flexFloat     `json:"liquidity"`
	Events        []APIEventRef `json:"events"`
	Tags          []APITag      `json:"tags"`
}

// Normalize converts a raw API record into a domain.Market. It returns one of
// the package's drop-reason errors when the record is malformed; callers skip
// that single market and continue. A missing or unparsable end date is not a
// drop here: it is preserved as nil and handled by the time-window filter.
func (m *APIMarket) Normalize() (domain.Market, error) {
	names, err := decodeStringArray(m.Outcomes)
	if err != nil {
		return domain.Market{}, fmt.Errorf("%w: %v", ErrBadOutcomes, err)
	}

	prices, err := decodePriceArray(m.OutcomePrices)
	if err != nil {
		return domain.Market{}, fmt.Errorf("%w: %v", ErrBadPrices, err)
	}

	if len(names) != len(prices) {
		return domain.Market{}, fmt.Errorf("%w: %d outcomes, %d prices", ErrLengthMismatch, len(names), len(prices))
	}
	if len(names) < 2 {
		return domain.Market{}, fmt.Errorf("%w: got %d", ErrTooFewOutcomes, len(names))
	}

	dm := domain.Market{
		ID:          m.ID,
		Question:    m.Question,
		Slug:        m.Slug,
		Active:      bool(m.Active),
		Closed:      bool(m.Closed),
		Category:    m.Category,
		Subcategory: m.Subcategory,
		Volume:      float64(m.Volume),
		Liquidity:   float64(m.Liquidity),
	}

	dm.Outcomes = make([]domain.Outcome, len(names))
	for i := range names {
		dm.Outcomes[i] = domain.Outcome{Name: names[i], Price: prices[i]}
	}

	if len(m.Events) > 0 {
		dm.EventTitle = m.Events[0].Title
	}

	dm.Tags = make([]domain.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		dm.Tags = append(dm.Tags, domain.Tag{Slug: t.Slug, Label: t.Label})
	}

	if m.EndDate != "" {
		if t, err := time.Parse(time.RFC3339, m.EndDate); err == nil {
			dm.EndDate = &t
		}
	}

	return dm, nil
}

// decodeStringArray parses a JSON-encoded string array like "[\"Yes\",\"No\"]".
func decodeStringArray(encoded string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(encoded), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodePriceArray parses a JSON-encoded price array. The API encodes the
// values as strings ("[\"0.97\",\"0.03\"]") but plain number arrays are
// accepted too.
func decodePriceArray(encoded string) ([]float64, error) {
	var asStrings []string
	if err := json.Unmarshal([]byte(encoded), &asStrings); err == nil {
		out := make([]float64, len(asStrings))
		for i, s := range asStrings {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("element %d: %v", i, err)
			}
			out[i] = v
		}
		return out, nil
	}

	var asFloats []float64
	if err := json.Unmarshal([]byte(encoded), &asFloats); err != nil {
		return nil, err
	}
	return asFloats, nil
}
