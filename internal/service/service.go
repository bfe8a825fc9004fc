package service

import (
	"context"

	"github.com/shopspring/decimal"

	"abantech/internal/events"
	"abantech/internal/ledger"
	"abantech/internal/log"
	"abantech/internal/model"
	"abantech/internal/paging"
)

// Section is one paginated, totalled record table of a ledger or dashboard.
// Key fingerprints the filtered sequence; clients echo it back with the page
// they want and a stale key sends them to page 1.
type Section[R ledger.Record] struct {
	Page   paging.Page[R] `json:"page"`
	Key    string         `json:"key"`
	Totals ledger.Totals  `json:"totals"`
}

func buildSection[R ledger.Record](records []R, f ledger.Filter, id func(R) string, state paging.State, size int) Section[R] {
	filtered := ledger.Apply(records, f)

	parts := []string{f.Owner, f.Shop, f.From, f.To, f.Kind}
	for _, r := range filtered {
		parts = append(parts, id(r))
	}
	key := paging.Fingerprint(parts...)
	state = state.Sync(key)

	return Section[R]{
		Page:   paging.Paginate(filtered, size, state.Page),
		Key:    key,
		Totals: ledger.Aggregate(filtered, ledger.ByKind[R]),
	}
}

func revenueID(r model.Revenue) string { return r.ID.String() }
func expenseID(e model.Expense) string { return e.ID.String() }

func profit(rev Section[model.Revenue], exp Section[model.Expense]) decimal.Decimal {
	return ledger.Profit(rev.Totals, exp.Totals)
}

// notifier publishes domain events. A failed publish is logged and never
// fails the operation that caused it.
type notifier struct {
	publisher events.Publisher
	logger    *log.Logger
}

func newNotifier(publisher events.Publisher, logger *log.Logger) notifier {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return notifier{publisher: publisher, logger: logger}
}

func (n notifier) emit(ctx context.Context, typ events.Type, actor, subject, shop string, payload any) {
	e, err := events.New(typ, actor, subject, shop, payload)
	if err == nil {
		err = n.publisher.Publish(ctx, e)
	}
	if err != nil {
		n.logger.WarnContext(ctx, "publish event failed", "type", typ, "subject", subject, "error", err)
	}
}
