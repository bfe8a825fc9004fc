package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "abantech/internal/errors"
	"abantech/internal/events"
	"abantech/internal/log"
	"abantech/internal/model"
	"abantech/internal/paging"
	"abantech/internal/session"
)

type ledgerFixture struct {
	revenues *MockRevenueRepository
	expenses *MockExpenseRepository
	shops    *MockShopRepository
	events   *events.Recorder
	svc      LedgerService
	shop     *model.Shop
	alice    *session.Session
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		revenues: new(MockRevenueRepository),
		expenses: new(MockExpenseRepository),
		shops:    new(MockShopRepository),
		events:   &events.Recorder{},
		shop:     &model.Shop{ID: uuid.New(), Name: "Kilimani", Status: model.ShopStatusActive},
	}
	f.svc = NewLedgerService(f.revenues, f.expenses, f.shops, f.events, log.Discard(), 2)
	f.alice = session.New(&model.User{
		ID: uuid.New(), Email: "alice@example.com", Username: "alice",
		Role: model.RoleUser, Status: model.UserStatusActive, ShopID: &f.shop.ID,
	})
	return f
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func TestLedgerService_RecordRevenue(t *testing.T) {
	f := newLedgerFixture()
	f.shops.On("FindByID", mock.Anything, f.shop.ID).Return(f.shop, nil)
	f.revenues.On("Create", mock.Anything, mock.AnythingOfType("*model.Revenue")).Return(nil)

	rev, err := f.svc.RecordRevenue(context.Background(), f.alice, RevenueInput{
		Activity: "WiFi Hotspot",
		Amount:   amount("500"),
		Date:     "2024-01-10",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ActivityWiFiHotspot, rev.Activity)
	assert.Equal(t, "Kilimani", rev.Shop)
	assert.Equal(t, "alice", rev.Username)
	assert.True(t, amount("500").Equal(rev.Amount))
	assert.Equal(t, []events.Type{events.RevenueRecorded}, f.events.Types())
	f.revenues.AssertExpectations(t)
}

func TestLedgerService_RecordRevenueValidation(t *testing.T) {
	tests := []struct {
		name  string
		input RevenueInput
		field string
	}{
		{name: "unknown activity", input: RevenueInput{Activity: "Lottery", Amount: amount("1"), Date: "2024-01-10"}, field: "activity"},
		{name: "negative amount", input: RevenueInput{Activity: "Stationery", Amount: amount("-1"), Date: "2024-01-10"}, field: "amount"},
		{name: "non-canonical date", input: RevenueInput{Activity: "Stationery", Amount: amount("1"), Date: "10/01/2024"}, field: "date"},
		{name: "impossible date", input: RevenueInput{Activity: "Stationery", Amount: amount("1"), Date: "2024-02-30"}, field: "date"},
		{
			name:  "description too long",
			input: RevenueInput{Activity: "Stationery", Amount: amount("1"), Date: "2024-01-10", Description: string(make([]byte, 101))},
			field: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			_, err := f.svc.RecordRevenue(context.Background(), f.alice, tt.input)
			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			f.revenues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestLedgerService_RecordRequiresActiveShop(t *testing.T) {
	f := newLedgerFixture()
	noShop := session.New(&model.User{ID: uuid.New(), Email: "drifter@example.com", Role: model.RoleUser, Status: model.UserStatusActive})

	_, err := f.svc.RecordRevenue(context.Background(), noShop, RevenueInput{Activity: "Stationery", Amount: amount("1"), Date: "2024-01-10"})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "shop", verr.Field)

	closed := *f.shop
	closed.Status = model.ShopStatusClosed
	f.shops.On("FindByID", mock.Anything, f.shop.ID).Return(&closed, nil)
	_, err = f.svc.RecordExpense(context.Background(), f.alice, ExpenseInput{Category: "Supplies", Amount: amount("1"), Date: "2024-01-10"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "shop is closed", verr.Message)
}

func TestLedgerService_RecordExpenseUsesRoleFamily(t *testing.T) {
	f := newLedgerFixture()
	f.shops.On("FindByID", mock.Anything, f.shop.ID).Return(f.shop, nil)
	f.expenses.On("Create", mock.Anything, mock.AnythingOfType("*model.Expense")).Return(nil)

	exp, err := f.svc.RecordExpense(context.Background(), f.alice, ExpenseInput{Category: "Logistics", Amount: amount("120"), Date: "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryLogistics, exp.Category)
	assert.Equal(t, "alice", exp.Username)

	_, err = f.svc.RecordExpense(context.Background(), f.alice, ExpenseInput{Category: "Rent", Amount: amount("120"), Date: "2024-01-10"})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr), "users cannot record admin categories")
	assert.Equal(t, "category", verr.Field)
}

func TestLedgerService_UpdateRevenue(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	mine := &model.Revenue{ID: uuid.New(), Activity: model.ActivityStationery, Amount: amount("10"), Date: "2024-01-10", Shop: "Kilimani", Username: "alice"}
	theirs := &model.Revenue{ID: uuid.New(), Activity: model.ActivityStationery, Amount: amount("10"), Date: "2024-01-10", Shop: "Kilimani", Username: "bob"}
	missing := uuid.New()

	f.revenues.On("FindByID", mock.Anything, mine.ID).Return(mine, nil)
	f.revenues.On("FindByID", mock.Anything, theirs.ID).Return(theirs, nil)
	f.revenues.On("FindByID", mock.Anything, missing).Return(nil, apperrors.ErrNotFound)

	patched := *mine
	patched.Amount = amount("15")
	patched.Description = "fixed typo"
	f.revenues.On("Patch", mock.Anything, mine.ID, map[string]interface{}{
		"amount":      amount("15"),
		"description": "fixed typo",
	}).Return(&patched, nil)

	newAmount := amount("15")
	got, err := f.svc.UpdateRevenue(ctx, f.alice, mine.ID, RevenuePatch{Amount: &newAmount, Description: strPtr("  fixed typo ")})
	require.NoError(t, err)
	assert.True(t, amount("15").Equal(got.Amount))
	assert.Equal(t, []events.Type{events.RevenueUpdated}, f.events.Types())

	_, err = f.svc.UpdateRevenue(ctx, f.alice, theirs.ID, RevenuePatch{Amount: &newAmount})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.UpdateRevenue(ctx, f.alice, missing, RevenuePatch{Amount: &newAmount})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.UpdateRevenue(ctx, f.alice, mine.ID, RevenuePatch{Date: strPtr("yesterday")})
	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))

	f.revenues.AssertNumberOfCalls(t, "Patch", 1)
}

func TestLedgerService_UpdateExpenseOwnerOnly(t *testing.T) {
	f := newLedgerFixture()
	admin := session.New(&model.User{ID: uuid.New(), Email: "root@example.com", Role: model.RoleAdmin, Status: model.UserStatusActive})
	exp := &model.Expense{ID: uuid.New(), Category: model.CategorySupplies, Amount: amount("10"), Date: "2024-01-10", Shop: "Kilimani", Username: "alice"}
	f.expenses.On("FindByID", mock.Anything, exp.ID).Return(exp, nil)

	_, err := f.svc.UpdateExpense(context.Background(), admin, exp.ID, ExpensePatch{Category: strPtr("Logistics")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "admins cannot edit records they do not own")
	f.expenses.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_Ledger(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	f.shops.On("FindByID", mock.Anything, f.shop.ID).Return(f.shop, nil)

	revenues := []model.Revenue{
		{ID: uuid.New(), Activity: model.ActivityWiFiHotspot, Amount: amount("500"), Date: "2024-01-10", Shop: "Kilimani", Username: "alice"},
		{ID: uuid.New(), Activity: model.ActivityStationery, Amount: amount("40"), Date: "2024-01-11", Shop: "Kilimani", Username: "alice"},
		{ID: uuid.New(), Activity: model.ActivityWiFiHotspot, Amount: amount("60"), Date: "2024-01-12", Shop: "Kilimani", Username: "alice"},
		{ID: uuid.New(), Activity: model.ActivityCyberCafe, Amount: amount("99"), Date: "2024-02-01", Shop: "Kilimani", Username: "alice"},
	}
	expenses := []model.Expense{
		{ID: uuid.New(), Category: model.CategorySupplies, Amount: amount("100"), Date: "2024-01-10", Shop: "Kilimani", Username: "alice"},
	}
	f.revenues.On("ListForUser", mock.Anything, "alice").Return(revenues, nil)
	f.expenses.On("ListForUser", mock.Anything, "alice").Return(expenses, nil)

	t.Run("no range shows nothing", func(t *testing.T) {
		view, err := f.svc.Ledger(ctx, f.alice, LedgerQuery{})
		require.NoError(t, err)
		assert.True(t, view.RangeRequired)
		assert.Empty(t, view.Revenues.Page.Items)
		assert.Empty(t, view.Expenses.Page.Items)
		assert.Equal(t, 0, view.Revenues.Page.PageCount)
		assert.True(t, view.Profit.IsZero())
	})

	t.Run("january range", func(t *testing.T) {
		view, err := f.svc.Ledger(ctx, f.alice, LedgerQuery{From: "2024-01-01", To: "2024-01-31"})
		require.NoError(t, err)
		assert.False(t, view.RangeRequired)
		assert.Equal(t, "Kilimani", view.Shop)
		assert.Equal(t, 3, view.Revenues.Page.Total)
		assert.Equal(t, 2, view.Revenues.Page.PageCount)
		assert.Len(t, view.Revenues.Page.Items, 2)
		assert.True(t, amount("600").Equal(view.Revenues.Totals.Total))
		assert.True(t, amount("560").Equal(view.Revenues.Totals.ByKey[string(model.ActivityWiFiHotspot)]))
		assert.True(t, amount("500").Equal(view.Profit))
	})

	t.Run("page is kept while the key matches and reset when it changes", func(t *testing.T) {
		first, err := f.svc.Ledger(ctx, f.alice, LedgerQuery{From: "2024-01-01", To: "2024-01-31"})
		require.NoError(t, err)

		second, err := f.svc.Ledger(ctx, f.alice, LedgerQuery{
			From: "2024-01-01", To: "2024-01-31",
			RevenuePage: paging.State{Page: 2, Key: first.Revenues.Key},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, second.Revenues.Page.Page)
		require.Len(t, second.Revenues.Page.Items, 1)
		assert.Equal(t, revenues[2].ID, second.Revenues.Page.Items[0].ID)

		narrowed, err := f.svc.Ledger(ctx, f.alice, LedgerQuery{
			From: "2024-01-01", To: "2024-01-31", Activity: "WiFi Hotspot",
			RevenuePage: paging.State{Page: 2, Key: first.Revenues.Key},
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.Revenues.Key, narrowed.Revenues.Key)
		assert.Equal(t, 1, narrowed.Revenues.Page.Page)
	})

	t.Run("page without a key is served as requested", func(t *testing.T) {
		view, err := f.svc.Ledger(ctx, f.alice, LedgerQuery{
			From: "2024-01-01", To: "2024-01-31",
			RevenuePage: paging.State{Page: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, view.Revenues.Page.Page)
		require.Len(t, view.Revenues.Page.Items, 1)
		assert.Equal(t, revenues[2].ID, view.Revenues.Page.Items[0].ID)
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := f.svc.Ledger(ctx, f.alice, LedgerQuery{From: "2024-02-01", To: "2024-01-01"})
		var verr *apperrors.ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}
