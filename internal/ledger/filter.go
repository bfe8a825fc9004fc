// Package ledger filters and totals revenue and expense records.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AllKinds is accepted as an explicit "no restriction" kind filter.
const AllKinds = "all"

// Record is a dated, owned amount booked against a shop.
type Record interface {
	LedgerDate() string
	LedgerAmount() decimal.Decimal
	LedgerShop() string
	LedgerOwner() string
	LedgerKind() string
}

// Filter selects records. Zero-valued fields do not restrict.
// From and To are inclusive YYYY-MM-DD bounds compared as strings.
type Filter struct {
	Owner string
	Shop  string
	From  string
	To    string
	Kind  string

	// RequireRange turns an absent date range into an empty result rather than
	// every record.
	RequireRange bool
}

// HasRange reports whether at least one date bound is set.
func (f Filter) HasRange() bool {
	return f.From != "" || f.To != ""
}

// Match reports whether a single record passes the filter.
func (f Filter) Match(r Record) bool {
	if f.RequireRange && !f.HasRange() {
		return false
	}
	if f.Owner != "" && r.LedgerOwner() != f.Owner {
		return false
	}
	if f.Shop != "" && r.LedgerShop() != f.Shop {
		return false
	}
	if f.From != "" && r.LedgerDate() < f.From {
		return false
	}
	if f.To != "" && r.LedgerDate() > f.To {
		return false
	}
	if kind := strings.TrimSpace(f.Kind); kind != "" && kind != AllKinds && r.LedgerKind() != kind {
		return false
	}
	return true
}

// Apply returns the records passing f, in their original order. The result is
// never nil.
func Apply[R Record](records []R, f Filter) []R {
	out := make([]R, 0, len(records))
	if f.RequireRange && !f.HasRange() {
		return out
	}
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
