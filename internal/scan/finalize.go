package scan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/polyscan/scanner/internal/domain"
)

// Finalizer computes the derived fields of each output row. It shares the
// run's reference instant with the window filter so hours-remaining always
// lands in [0, window].
type Finalizer struct {
	now     time.Time
	urlBase string
}

// NewFinalizer creates a Finalizer. urlBase is the market page prefix the slug
// is appended to, e.g. "https://polymarket.com/event".
func NewFinalizer(now time.Time, urlBase string) *Finalizer {
	return &Finalizer{
		now:     now,
		urlBase: strings.TrimRight(urlBase, "/"),
	}
}

// Row turns a flattened candidate into a final output row. The caller
// guarantees the market passed the window filter, so EndDate is non-nil.
func (f *Finalizer) Row(c Candidate) domain.Row {
	resolve := *c.Market.EndDate
	return domain.Row{
		EventTitle:     c.Market.EventTitle,
		Question:       c.Market.Question,
		Outcome:        c.OutcomeLabel,
		YesPrice:       c.YesPrice,
		NoPrice:        c.NoPrice,
		CertaintySide:  c.CertaintySide,
		Category:       c.Market.Category,
		Subcategory:    c.Market.Subcategory,
		Volume:         c.Market.Volume,
		Liquidity:      c.Market.Liquidity,
		ResolveTime:    resolve,
		HoursRemaining: resolve.Sub(f.now).Hours(),
		MarketURL:      fmt.Sprintf("%s/%s", f.urlBase, c.Market.Slug),
	}
}

// SortRows orders rows ascending by resolve time, soonest first. The sort is
// stable so ties keep their original fetch order and identical input yields
// identical output.
func SortRows(rows []domain.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ResolveTime.Before(rows[j].ResolveTime)
	})
}
