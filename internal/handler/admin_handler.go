package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "abantech/internal/errors"
	"abantech/internal/log"
	"abantech/internal/model"
	"abantech/internal/paging"
	"abantech/internal/service"
)

// AdminHandler serves the admin dashboard.
type AdminHandler struct {
	adminService service.AdminService
	errorResponder
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(adminService service.AdminService, logger *log.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, errorResponder: newErrorResponder(logger)}
}

// DashboardRequest selects the shop and date range shown on the dashboard.
type DashboardRequest struct {
	Shop        string `query:"shop"`
	From        string `query:"from" validate:"omitempty,isodate"`
	To          string `query:"to" validate:"omitempty,isodate"`
	Activity    string `query:"activity"`
	Category    string `query:"category"`
	RevenuePage int    `query:"revenue_page" validate:"min=0"`
	RevenueKey  string `query:"revenue_key"`
	ExpensePage int    `query:"expense_page" validate:"min=0"`
	ExpenseKey  string `query:"expense_key"`
	PageSize    int    `query:"page_size" validate:"min=0,max=100"`
}

// UserUpdateRequest changes a user's status and/or role.
type UserUpdateRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=active fired"`
	Role   *string `json:"role" validate:"omitempty,oneof=user admin"`
}

// ShopCreateRequest creates a shop.
type ShopCreateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ShopUpdateRequest opens or closes a shop.
type ShopUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=active closed"`
}

// AdminExpenseRequest records an overhead expense against a shop.
type AdminExpenseRequest struct {
	Shop        string          `json:"shop" validate:"required"`
	Category    string          `json:"category" validate:"required,category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date" validate:"required,isodate"`
	Description string          `json:"description" validate:"max=100"`
}

// Dashboard godoc
// @Summary Admin dashboard for one shop
// @Description Defaults to the first active shop. Without from/to the record tables are empty.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param shop query string false "Shop name"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Param activity query string false "Revenue activity"
// @Param category query string false "Expense category"
// @Param revenue_page query int false "Revenue page"
// @Param revenue_key query string false "Revenue key from the previous response"
// @Param expense_page query int false "Expense page"
// @Param expense_key query string false "Expense key from the previous response"
// @Param page_size query int false "Page size"
// @Success 200 {object} service.Dashboard
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req DashboardRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.adminService.Dashboard(c.Request().Context(), sess, service.DashboardQuery{
		Shop:        req.Shop,
		From:        req.From,
		To:          req.To,
		Activity:    req.Activity,
		Category:    req.Category,
		RevenuePage: paging.State{Page: req.RevenuePage, Key: req.RevenueKey},
		ExpensePage: paging.State{Page: req.ExpensePage, Key: req.ExpenseKey},
		PageSize:    req.PageSize,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.adminService.ListUsers(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateUser godoc
// @Summary Fire, reactivate, promote or demote a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UserUpdateRequest true "New status and/or role"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UserUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Status == nil && req.Role == nil {
		return h.fail(c, apperrors.NewValidationError("", "status or role is required"))
	}

	var patch service.UserPatch
	if req.Status != nil {
		status := model.UserStatus(*req.Status)
		patch.Status = &status
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.adminService.UpdateUser(c.Request().Context(), sess, id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListShops godoc
// @Summary List all shops
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Shop
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/shops [get]
func (h *AdminHandler) ListShops(c echo.Context) error {
	shops, err := h.adminService.ListShops(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if shops == nil {
		shops = []model.Shop{}
	}
	return c.JSON(http.StatusOK, shops)
}

// ListActiveShops godoc
// @Summary Shops open for registration
// @Tags shops
// @Produce json
// @Success 200 {array} model.Shop
// @Router /shops [get]
func (h *AdminHandler) ListActiveShops(c echo.Context) error {
	shops, err := h.adminService.ListActiveShops(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, shops)
}

// CreateShop godoc
// @Summary Create a shop
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ShopCreateRequest true "Shop"
// @Success 201 {object} model.Shop
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/shops [post]
func (h *AdminHandler) CreateShop(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req ShopCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	shop, err := h.adminService.CreateShop(c.Request().Context(), sess, req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, shop)
}

// UpdateShop godoc
// @Summary Open or close a shop
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shop ID"
// @Param request body ShopUpdateRequest true "New status"
// @Success 200 {object} model.Shop
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/shops/{id} [patch]
func (h *AdminHandler) UpdateShop(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ShopUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	shop, err := h.adminService.SetShopStatus(c.Request().Context(), sess, id, model.ShopStatus(req.Status))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}

// CreateExpense godoc
// @Summary Record an overhead expense against a shop
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AdminExpenseRequest true "Expense"
// @Success 201 {object} model.Expense
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/expenses [post]
func (h *AdminHandler) CreateExpense(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req AdminExpenseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	exp, err := h.adminService.RecordExpense(c.Request().Context(), sess, service.AdminExpenseInput{
		Shop:        req.Shop,
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, exp)
}
