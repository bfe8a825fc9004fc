package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Totals is the sum of a record set, optionally broken down by key.
type Totals struct {
	ByKey map[string]decimal.Decimal `json:"by_key,omitempty"`
	Total decimal.Decimal            `json:"total"`
}

// KeyFunc groups records for Aggregate.
type KeyFunc[R Record] func(R) string

// ByKind groups records by activity or category.
func ByKind[R Record](r R) string {
	return r.LedgerKind()
}

// Aggregate sums the amounts of records. With a nil key only Total is filled;
// otherwise every record lands in exactly one ByKey bucket and Total equals the
// sum of the buckets.
func Aggregate[R Record](records []R, key KeyFunc[R]) Totals {
	totals := Totals{Total: decimal.Zero}
	if key != nil {
		totals.ByKey = make(map[string]decimal.Decimal)
	}
	for _, r := range records {
		amount := r.LedgerAmount()
		totals.Total = totals.Total.Add(amount)
		if key != nil {
			k := key(r)
			totals.ByKey[k] = totals.ByKey[k].Add(amount)
		}
	}
	return totals
}

// Sum is Aggregate without a breakdown.
func Sum[R Record](records []R) decimal.Decimal {
	return Aggregate(records, nil).Total
}

// Profit is revenue minus expense for the same selection.
func Profit(revenue, expense Totals) decimal.Decimal {
	return revenue.Total.Sub(expense.Total)
}

// ParseAmount reads a decimal amount leniently: blank or non-numeric input
// counts as zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
