package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"abantech/internal/access"
	apperrors "abantech/internal/errors"
	"abantech/internal/events"
	"abantech/internal/ledger"
	"abantech/internal/log"
	"abantech/internal/model"
	"abantech/internal/paging"
	"abantech/internal/repository"
	"abantech/internal/session"
)

// RevenueInput is a new revenue submission.
type RevenueInput struct {
	Activity    string
	Amount      decimal.Decimal
	Date        string
	Description string
}

// ExpenseInput is a new expense submission.
type ExpenseInput struct {
	Category    string
	Amount      decimal.Decimal
	Date        string
	Description string
}

// RevenuePatch holds the mutable revenue fields. Nil fields are left alone.
type RevenuePatch struct {
	Activity    *string
	Amount      *decimal.Decimal
	Date        *string
	Description *string
}

// ExpensePatch holds the mutable expense fields. Nil fields are left alone.
type ExpensePatch struct {
	Category    *string
	Amount      *decimal.Decimal
	Date        *string
	Description *string
}

// LedgerQuery selects and positions a user's ledger.
type LedgerQuery struct {
	From        string
	To          string
	Activity    string
	Category    string
	RevenuePage paging.State
	ExpensePage paging.State
	PageSize    int
}

// LedgerView is the caller's own records for a date range.
type LedgerView struct {
	Owner    string                 `json:"owner"`
	Shop     string                 `json:"shop,omitempty"`
	From     string                 `json:"from,omitempty"`
	To       string                 `json:"to,omitempty"`
	Revenues Section[model.Revenue] `json:"revenues"`
	Expenses Section[model.Expense] `json:"expenses"`
	Profit   decimal.Decimal        `json:"profit"`

	// RangeRequired is set when no date range was given and the tables are
	// therefore empty.
	RangeRequired bool `json:"range_required"`
}

// LedgerService records and lists a user's revenues and expenses.
type LedgerService interface {
	RecordRevenue(ctx context.Context, s *session.Session, in RevenueInput) (*model.Revenue, error)
	RecordExpense(ctx context.Context, s *session.Session, in ExpenseInput) (*model.Expense, error)
	UpdateRevenue(ctx context.Context, s *session.Session, id uuid.UUID, p RevenuePatch) (*model.Revenue, error)
	UpdateExpense(ctx context.Context, s *session.Session, id uuid.UUID, p ExpensePatch) (*model.Expense, error)
	Ledger(ctx context.Context, s *session.Session, q LedgerQuery) (*LedgerView, error)
}

type ledgerService struct {
	revenues  repository.RevenueRepository
	expenses  repository.ExpenseRepository
	shops     repository.ShopRepository
	validator *RecordValidator
	notifier  notifier
	pageSize  int
}

// NewLedgerService creates a ledger service. A non-positive pageSize falls
// back to paging.DefaultPageSize.
func NewLedgerService(
	revenues repository.RevenueRepository,
	expenses repository.ExpenseRepository,
	shops repository.ShopRepository,
	publisher events.Publisher,
	logger *log.Logger,
	pageSize int,
) LedgerService {
	if pageSize <= 0 {
		pageSize = paging.DefaultPageSize
	}
	return &ledgerService{
		revenues:  revenues,
		expenses:  expenses,
		shops:     shops,
		validator: NewRecordValidator(),
		notifier:  newNotifier(publisher, logger),
		pageSize:  pageSize,
	}
}

// shopOf returns the name of the active shop the session's user works at.
func (s *ledgerService) shopOf(ctx context.Context, sess *session.Session) (string, error) {
	if sess.ShopID == nil {
		return "", apperrors.NewValidationError("shop", "no shop assigned")
	}
	shop, err := s.shops.FindByID(ctx, *sess.ShopID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", apperrors.NewValidationError("shop", "no shop assigned")
	}
	if err != nil {
		return "", fmt.Errorf("find shop: %w", err)
	}
	if shop.Status != model.ShopStatusActive {
		return "", apperrors.NewValidationError("shop", "shop is closed")
	}
	return shop.Name, nil
}

// RecordRevenue stores a revenue owned by the caller at the caller's shop.
func (s *ledgerService) RecordRevenue(ctx context.Context, sess *session.Session, in RevenueInput) (*model.Revenue, error) {
	activity, err := model.ParseActivity(in.Activity)
	if err != nil {
		return nil, apperrors.NewValidationError("activity", err.Error())
	}
	description := strings.TrimSpace(in.Description)
	if err := s.validator.ValidateRecord(in.Amount, in.Date, description); err != nil {
		return nil, err
	}
	shop, err := s.shopOf(ctx, sess)
	if err != nil {
		return nil, err
	}

	rev := &model.Revenue{
		Activity:    activity,
		Amount:      in.Amount,
		Date:        in.Date,
		Shop:        shop,
		Username:    sess.Identifier(),
		Description: description,
	}
	if err := s.revenues.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("create revenue: %w", err)
	}

	s.notifier.emit(ctx, events.RevenueRecorded, rev.Username, rev.ID.String(), rev.Shop, rev)
	return rev, nil
}

// RecordExpense stores an expense owned by the caller at the caller's shop,
// with a category from the caller's role family.
func (s *ledgerService) RecordExpense(ctx context.Context, sess *session.Session, in ExpenseInput) (*model.Expense, error) {
	category, err := model.CategoriesFor(sess.Role).Parse(in.Category)
	if err != nil {
		return nil, apperrors.NewValidationError("category", err.Error())
	}
	description := strings.TrimSpace(in.Description)
	if err := s.validator.ValidateRecord(in.Amount, in.Date, description); err != nil {
		return nil, err
	}
	shop, err := s.shopOf(ctx, sess)
	if err != nil {
		return nil, err
	}

	exp := &model.Expense{
		Category:    category,
		Amount:      in.Amount,
		Date:        in.Date,
		Shop:        shop,
		Username:    sess.Identifier(),
		Description: description,
	}
	if err := s.expenses.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.notifier.emit(ctx, events.ExpenseRecorded, exp.Username, exp.ID.String(), exp.Shop, exp)
	return exp, nil
}

// UpdateRevenue changes the mutable fields of a revenue the caller owns.
func (s *ledgerService) UpdateRevenue(ctx context.Context, sess *session.Session, id uuid.UUID, p RevenuePatch) (*model.Revenue, error) {
	rev, err := s.revenues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(sess, rev) {
		return nil, apperrors.ErrForbidden
	}

	fields := make(map[string]interface{})
	if p.Activity != nil {
		activity, err := model.ParseActivity(*p.Activity)
		if err != nil {
			return nil, apperrors.NewValidationError("activity", err.Error())
		}
		fields["activity"] = activity
	}
	if err := s.patchCommon(fields, p.Amount, p.Date, p.Description); err != nil {
		return nil, err
	}

	updated, err := s.revenues.Patch(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.notifier.emit(ctx, events.RevenueUpdated, sess.Identifier(), updated.ID.String(), updated.Shop, updated)
	return updated, nil
}

// UpdateExpense changes the mutable fields of an expense the caller owns.
func (s *ledgerService) UpdateExpense(ctx context.Context, sess *session.Session, id uuid.UUID, p ExpensePatch) (*model.Expense, error) {
	exp, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(sess, exp) {
		return nil, apperrors.ErrForbidden
	}

	fields := make(map[string]interface{})
	if p.Category != nil {
		category, err := model.CategoriesFor(sess.Role).Parse(*p.Category)
		if err != nil {
			return nil, apperrors.NewValidationError("category", err.Error())
		}
		fields["category"] = category
	}
	if err := s.patchCommon(fields, p.Amount, p.Date, p.Description); err != nil {
		return nil, err
	}

	updated, err := s.expenses.Patch(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.notifier.emit(ctx, events.ExpenseUpdated, sess.Identifier(), updated.ID.String(), updated.Shop, updated)
	return updated, nil
}

func (s *ledgerService) patchCommon(fields map[string]interface{}, amount *decimal.Decimal, date, description *string) error {
	if amount != nil {
		if err := s.validator.ValidateAmount(*amount); err != nil {
			return err
		}
		fields["amount"] = *amount
	}
	if date != nil {
		if err := s.validator.ValidateDate("date", *date); err != nil {
			return err
		}
		fields["date"] = *date
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		if err := s.validator.ValidateDescription(d); err != nil {
			return err
		}
		fields["description"] = d
	}
	return nil
}

// Ledger returns the caller's own records. Without a date range both tables
// are empty.
func (s *ledgerService) Ledger(ctx context.Context, sess *session.Session, q LedgerQuery) (*LedgerView, error) {
	if err := s.validator.ValidateRange(q.From, q.To); err != nil {
		return nil, err
	}
	activity, err := s.validator.ParseActivityFilter(q.Activity)
	if err != nil {
		return nil, err
	}
	category, err := s.validator.ParseCategoryFilter(q.Category)
	if err != nil {
		return nil, err
	}

	owner := sess.Identifier()
	revenues, err := s.revenues.ListForUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list revenues: %w", err)
	}
	expenses, err := s.expenses.ListForUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	base := ledger.Filter{Owner: owner, From: q.From, To: q.To, RequireRange: true}
	revFilter, expFilter := base, base
	revFilter.Kind = activity
	expFilter.Kind = category

	size := q.PageSize
	if size <= 0 {
		size = s.pageSize
	}

	view := &LedgerView{
		Owner:         owner,
		From:          q.From,
		To:            q.To,
		Revenues:      buildSection(revenues, revFilter, revenueID, q.RevenuePage, size),
		Expenses:      buildSection(expenses, expFilter, expenseID, q.ExpensePage, size),
		RangeRequired: !base.HasRange(),
	}
	view.Profit = profit(view.Revenues, view.Expenses)
	if sess.ShopID != nil {
		if shop, err := s.shops.FindByID(ctx, *sess.ShopID); err == nil {
			view.Shop = shop.Name
		}
	}
	return view, nil
}
