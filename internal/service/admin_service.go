package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"abantech/internal/cache"
	apperrors "abantech/internal/errors"
	"abantech/internal/events"
	"abantech/internal/ledger"
	"abantech/internal/log"
	"abantech/internal/model"
	"abantech/internal/paging"
	"abantech/internal/repository"
	"abantech/internal/session"
)

const (
	shopsCacheKey = "shops:all"
	shopsCacheTTL = 5 * time.Minute
)

// DashboardQuery selects the shop and date range of the admin dashboard.
type DashboardQuery struct {
	Shop        string
	From        string
	To          string
	Activity    string
	Category    string
	RevenuePage paging.State
	ExpensePage paging.State
	PageSize    int
}

// Dashboard is the admin overview of one shop plus the user and shop lists.
type Dashboard struct {
	Shop     string                 `json:"shop"`
	From     string                 `json:"from,omitempty"`
	To       string                 `json:"to,omitempty"`
	Users    []model.User           `json:"users"`
	Shops    []model.Shop           `json:"shops"`
	Revenues Section[model.Revenue] `json:"revenues"`
	Expenses Section[model.Expense] `json:"expenses"`
	Profit   decimal.Decimal        `json:"profit"`

	// RangeRequired is set when no date range was given and the tables are
	// therefore empty.
	RangeRequired bool `json:"range_required"`
}

// UserPatch holds the admin-mutable user fields. Nil fields are left alone.
type UserPatch struct {
	Status *model.UserStatus
	Role   *model.Role
}

// AdminExpenseInput is an overhead expense recorded by an admin against any shop.
type AdminExpenseInput struct {
	Shop        string
	Category    string
	Amount      decimal.Decimal
	Date        string
	Description string
}

// AdminService backs the admin dashboard.
type AdminService interface {
	Dashboard(ctx context.Context, s *session.Session, q DashboardQuery) (*Dashboard, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, s *session.Session, id uuid.UUID, p UserPatch) (*model.User, error)
	SetUserStatus(ctx context.Context, s *session.Session, id uuid.UUID, status model.UserStatus) (*model.User, error)
	SetUserRole(ctx context.Context, s *session.Session, id uuid.UUID, role model.Role) (*model.User, error)
	ListShops(ctx context.Context) ([]model.Shop, error)
	ListActiveShops(ctx context.Context) ([]model.Shop, error)
	CreateShop(ctx context.Context, s *session.Session, name string) (*model.Shop, error)
	SetShopStatus(ctx context.Context, s *session.Session, id uuid.UUID, status model.ShopStatus) (*model.Shop, error)
	RecordExpense(ctx context.Context, s *session.Session, in AdminExpenseInput) (*model.Expense, error)
}

type adminService struct {
	users     repository.UserRepository
	shops     repository.ShopRepository
	revenues  repository.RevenueRepository
	expenses  repository.ExpenseRepository
	cache     *cache.Client
	validator *RecordValidator
	notifier  notifier
	logger    *log.Logger
	pageSize  int
}

// NewAdminService creates the admin service. The shop list is cached in c,
// which may be nil.
func NewAdminService(
	users repository.UserRepository,
	shops repository.ShopRepository,
	revenues repository.RevenueRepository,
	expenses repository.ExpenseRepository,
	c *cache.Client,
	publisher events.Publisher,
	logger *log.Logger,
	pageSize int,
) AdminService {
	if pageSize <= 0 {
		pageSize = paging.DefaultPageSize
	}
	n := newNotifier(publisher, logger)
	return &adminService{
		users:     users,
		shops:     shops,
		revenues:  revenues,
		expenses:  expenses,
		cache:     c,
		validator: NewRecordValidator(),
		notifier:  n,
		logger:    n.logger.WithComponent("admin"),
		pageSize:  pageSize,
	}
}

// Dashboard loads users, shops and the selected shop's records. Without a
// shop the first active one is shown. Any failed fetch fails the whole view.
func (s *adminService) Dashboard(ctx context.Context, sess *session.Session, q DashboardQuery) (*Dashboard, error) {
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

	var (
		users []model.User
		shops []model.Shop
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		shops, err = s.ListShops(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard fetch failed", "error", err)
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	shop := strings.TrimSpace(q.Shop)
	if shop == "" {
		shop = firstActive(shops)
	}

	view := &Dashboard{
		Shop:          shop,
		From:          q.From,
		To:            q.To,
		Users:         users,
		Shops:         shops,
		Revenues:      buildSection([]model.Revenue{}, ledger.Filter{RequireRange: true}, revenueID, q.RevenuePage, s.pageSize),
		Expenses:      buildSection([]model.Expense{}, ledger.Filter{RequireRange: true}, expenseID, q.ExpensePage, s.pageSize),
		RangeRequired: q.From == "" && q.To == "",
	}
	if users == nil {
		view.Users = []model.User{}
	}
	if shops == nil {
		view.Shops = []model.Shop{}
	}
	if shop == "" {
		return view, nil
	}

	var (
		revenues []model.Revenue
		expenses []model.Expense
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenues, err = s.revenues.ListForShop(gctx, shop)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListForShop(gctx, shop)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard fetch failed", "shop", shop, "error", err)
		return nil, fmt.Errorf("load shop records: %w", err)
	}

	size := q.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	base := ledger.Filter{Shop: shop, From: q.From, To: q.To, RequireRange: true}
	revFilter, expFilter := base, base
	revFilter.Kind = activity
	expFilter.Kind = category

	view.Revenues = buildSection(revenues, revFilter, revenueID, q.RevenuePage, size)
	view.Expenses = buildSection(expenses, expFilter, expenseID, q.ExpensePage, size)
	view.Profit = profit(view.Revenues, view.Expenses)
	return view, nil
}

func firstActive(shops []model.Shop) string {
	for _, shop := range shops {
		if shop.Status == model.ShopStatusActive {
			return shop.Name
		}
	}
	return ""
}

func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// UpdateUser applies status and role changes in one write. Admins cannot
// change their own account.
func (s *adminService) UpdateUser(ctx context.Context, sess *session.Session, id uuid.UUID, p UserPatch) (*model.User, error) {
	if id == sess.UserID {
		return nil, apperrors.ErrForbidden
	}

	fields := make(map[string]interface{})
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", *p.Status))
		}
		fields["status"] = *p.Status
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return nil, apperrors.NewValidationError("role", fmt.Sprintf("unknown role %q", *p.Role))
		}
		fields["role"] = *p.Role
	}

	user, err := s.users.Patch(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	actor := sess.Identifier()
	if p.Status != nil {
		s.notifier.emit(ctx, events.UserStatusChanged, actor, user.ID.String(), "", map[string]string{"status": string(user.Status)})
		s.logger.InfoContext(ctx, "user status changed", "user", user.Identifier(), "status", user.Status, "by", actor)
	}
	if p.Role != nil {
		s.notifier.emit(ctx, events.UserRoleChanged, actor, user.ID.String(), "", map[string]string{"role": string(user.Role)})
		s.logger.InfoContext(ctx, "user role changed", "user", user.Identifier(), "role", user.Role, "by", actor)
	}
	return user, nil
}

// SetUserStatus activates or fires a user. A fired user loses access on
// their next request.
func (s *adminService) SetUserStatus(ctx context.Context, sess *session.Session, id uuid.UUID, status model.UserStatus) (*model.User, error) {
	return s.UpdateUser(ctx, sess, id, UserPatch{Status: &status})
}

func (s *adminService) SetUserRole(ctx context.Context, sess *session.Session, id uuid.UUID, role model.Role) (*model.User, error) {
	return s.UpdateUser(ctx, sess, id, UserPatch{Role: &role})
}

// ListShops returns every shop, served from the cache when possible.
func (s *adminService) ListShops(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	if s.cache.GetJSON(ctx, shopsCacheKey, &shops) {
		return shops, nil
	}

	shops, err := s.shops.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, shopsCacheKey, shops, shopsCacheTTL)
	return shops, nil
}

// ListActiveShops returns the shops a new user may register at.
func (s *adminService) ListActiveShops(ctx context.Context) ([]model.Shop, error) {
	shops, err := s.ListShops(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]model.Shop, 0, len(shops))
	for _, shop := range shops {
		if shop.Status == model.ShopStatusActive {
			active = append(active, shop)
		}
	}
	return active, nil
}

// CreateShop adds an active shop. Names are trimmed and must be unique.
func (s *adminService) CreateShop(ctx context.Context, sess *session.Session, name string) (*model.Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "is required")
	}

	if _, err := s.shops.FindByName(ctx, name); err == nil {
		return nil, apperrors.ErrShopAlreadyExists
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check shop existence: %w", err)
	}

	shop := &model.Shop{Name: name, Status: model.ShopStatusActive}
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("create shop: %w", err)
	}
	_ = s.cache.Delete(ctx, shopsCacheKey)

	s.notifier.emit(ctx, events.ShopCreated, sess.Identifier(), shop.ID.String(), shop.Name, nil)
	return shop, nil
}

// SetShopStatus opens or closes a shop.
func (s *adminService) SetShopStatus(ctx context.Context, sess *session.Session, id uuid.UUID, status model.ShopStatus) (*model.Shop, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	shop, err := s.shops.Patch(ctx, id, map[string]interface{}{"status": status})
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, shopsCacheKey)

	s.notifier.emit(ctx, events.ShopStatusChanged, sess.Identifier(), shop.ID.String(), shop.Name, map[string]string{"status": string(shop.Status)})
	return shop, nil
}

// RecordExpense stores an admin-family expense against the named shop, owned
// by the recording admin.
func (s *adminService) RecordExpense(ctx context.Context, sess *session.Session, in AdminExpenseInput) (*model.Expense, error) {
	category, err := model.AdminCategories.Parse(in.Category)
	if err != nil {
		return nil, apperrors.NewValidationError("category", err.Error())
	}
	description := strings.TrimSpace(in.Description)
	if err := s.validator.ValidateRecord(in.Amount, in.Date, description); err != nil {
		return nil, err
	}

	shop, err := s.shops.FindByName(ctx, strings.TrimSpace(in.Shop))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewValidationError("shop", "unknown shop")
	}
	if err != nil {
		return nil, fmt.Errorf("find shop: %w", err)
	}

	exp := &model.Expense{
		Category:    category,
		Amount:      in.Amount,
		Date:        in.Date,
		Shop:        shop.Name,
		Username:    sess.Identifier(),
		Description: description,
	}
	if err := s.expenses.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.notifier.emit(ctx, events.ExpenseRecorded, exp.Username, exp.ID.String(), exp.Shop, exp)
	return exp, nil
}
