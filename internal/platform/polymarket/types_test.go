package polymarket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBinaryMarket(t *testing.T) {
	raw := APIMarket{
		ID:            "101",
		Question:      "Will the bill pass by Friday?",
		Slug:          "bill-pass-friday",
		Active:        true,
		Closed:        false,
		Category:      "Politics",
		Subcategory:   "US Congress",
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.97","0.03"]`,
		EndDate:       "2026-09-01T12:00:00Z",
		Volume:        12345.5,
		Liquidity:     678.9,
		Events:        []APIEventRef{{Title: "Congress votes", Slug: "congress-votes"}},
		Tags:          []APITag{{ID: "7", Label: "Politics", Slug: "politics"}},
	}

	m, err := raw.Normalize()
	require.NoError(t, err)

	assert.Equal(t, "101", m.ID)
	assert.Equal(t, "Congress votes", m.EventTitle)
	assert.Equal(t, "bill-pass-friday", m.Slug)
	assert.True(t, m.Active)
	assert.False(t, m.Closed)

	require.Len(t, m.Outcomes, 2)
	assert.Equal(t, "Yes", m.Outcomes[0].Name)
	assert.Equal(t, 0.97, m.Outcomes[0].Price)
	assert.Equal(t, "No", m.Outcomes[1].Name)
	assert.Equal(t, 0.03, m.Outcomes[1].Price)

	require.NotNil(t, m.EndDate)
	assert.Equal(t, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), m.EndDate.UTC())

	require.Len(t, m.Tags, 1)
	assert.Equal(t, "politics", m.Tags[0].Slug)
	assert.Equal(t, 12345.5, m.Volume)
	assert.Equal(t, 678.9, m.Liquidity)
}

func TestNormalizeDropsMalformedPrices(t *testing.T) {
	raw := APIMarket{
		ID:            "102",
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.9","oops"]`,
	}
	_, err := raw.Normalize()
	require.ErrorIs(t, err, ErrBadPrices)
}

func TestNormalizeDropsUnparsableOutcomeArray(t *testing.T) {
	raw := APIMarket{
		ID:            "103",
		Outcomes:      `not json`,
		OutcomePrices: `["0.9","0.1"]`,
	}
	_, err := raw.Normalize()
	require.ErrorIs(t, err, ErrBadOutcomes)
}

func TestNormalizeDropsLengthMismatch(t *testing.T) {
	raw := APIMarket{
		ID:            "104",
		Outcomes:      `["A","B","C"]`,
		OutcomePrices: `["0.9","0.1"]`,
	}
	_, err := raw.Normalize()
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNormalizeDropsSingleOutcome(t *testing.T) {
	raw := APIMarket{
		ID:            "105",
		Outcomes:      `["Yes"]`,
		OutcomePrices: `["1.0"]`,
	}
	_, err := raw.Normalize()
	require.ErrorIs(t, err, ErrTooFewOutcomes)
}

func TestNormalizeKeepsMissingEndDateNil(t *testing.T) {
	raw := APIMarket{
		ID:            "106",
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.99","0.01"]`,
	}
	m, err := raw.Normalize()
	require.NoError(t, err)
	assert.Nil(t, m.EndDate)
}

func TestNormalizeTreatsUnparsableEndDateAsMissing(t *testing.T) {
	raw := APIMarket{
		ID:            "107",
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.99","0.01"]`,
		EndDate:       "soon",
	}
	m, err := raw.Normalize()
	require.NoError(t, err)
	assert.Nil(t, m.EndDate)
}

func TestNormalizeAcceptsNumericPriceArray(t *testing.T) {
	raw := APIMarket{
		ID:            "108",
		Outcomes:      `["Up","Down"]`,
		OutcomePrices: `[0.96, 0.04]`,
	}
	m, err := raw.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 0.96, m.Outcomes[0].Price)
}

func TestFlexBoolAcceptsStringsAndBools(t *testing.T) {
	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(`{"active":"true","closed":false}`), &m))
	assert.True(t, bool(m.Active))
	assert.False(t, bool(m.Closed))

	require.NoError(t, json.Unmarshal([]byte(`{"active":false,"closed":"1"}`), &m))
	assert.False(t, bool(m.Active))
	assert.True(t, bool(m.Closed))
}

func TestFlexFloatAcceptsStringsAndNumbers(t *testing.T) {
	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(`{"volume":"1500.25","liquidity":42}`), &m))
	assert.Equal(t, 1500.25, float64(m.Volume))
	assert.Equal(t, 42.0, float64(m.Liquidity))

	// Missing and garbage values default to 0 rather than failing the record.
	var m2 APIMarket
	require.NoError(t, json.Unmarshal([]byte(`{"volume":"n/a"}`), &m2))
	assert.Equal(t, 0.0, float64(m2.Volume))
}
