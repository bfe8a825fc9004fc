package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"abantech/internal/log"
	"abantech/internal/paging"
	"abantech/internal/service"
)

// LedgerHandler serves a user's own revenues and expenses.
type LedgerHandler struct {
	ledgerService service.LedgerService
	errorResponder
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(ledgerService service.LedgerService, logger *log.Logger) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, errorResponder: newErrorResponder(logger)}
}

// RevenueRequest records a revenue.
type RevenueRequest struct {
	Activity    string          `json:"activity" validate:"required,activity"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date" validate:"required,isodate"`
	Description string          `json:"description" validate:"max=100"`
}

// ExpenseRequest records an expense.
type ExpenseRequest struct {
	Category    string          `json:"category" validate:"required,category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date" validate:"required,isodate"`
	Description string          `json:"description" validate:"max=100"`
}

// RevenuePatchRequest changes some fields of a revenue.
type RevenuePatchRequest struct {
	Activity    *string          `json:"activity" validate:"omitempty,activity"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date" validate:"omitempty,isodate"`
	Description *string          `json:"description" validate:"omitempty,max=100"`
}

// ExpensePatchRequest changes some fields of an expense.
type ExpensePatchRequest struct {
	Category    *string          `json:"category" validate:"omitempty,category"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date" validate:"omitempty,isodate"`
	Description *string          `json:"description" validate:"omitempty,max=100"`
}

// LedgerRequest filters and positions the ledger. The page keys are the ones
// returned by the previous response.
type LedgerRequest struct {
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

// Ledger godoc
// @Summary The caller's revenues and expenses for a date range
// @Description Without from/to both tables are empty.
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Param activity query string false "Revenue activity"
// @Param category query string false "Expense category"
// @Param revenue_page query int false "Revenue page"
// @Param revenue_key query string false "Revenue key from the previous response"
// @Param expense_page query int false "Expense page"
// @Param expense_key query string false "Expense key from the previous response"
// @Param page_size query int false "Page size"
// @Success 200 {object} service.LedgerView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /me/ledger [get]
func (h *LedgerHandler) Ledger(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req LedgerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.ledgerService.Ledger(c.Request().Context(), sess, service.LedgerQuery{
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

// CreateRevenue godoc
// @Summary Record a revenue at the caller's shop
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RevenueRequest true "Revenue"
// @Success 201 {object} model.Revenue
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /me/revenues [post]
func (h *LedgerHandler) CreateRevenue(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req RevenueRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rev, err := h.ledgerService.RecordRevenue(c.Request().Context(), sess, service.RevenueInput{
		Activity:    req.Activity,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, rev)
}

// UpdateRevenue godoc
// @Summary Change a revenue the caller recorded
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Revenue ID"
// @Param request body RevenuePatchRequest true "Fields to change"
// @Success 200 {object} model.Revenue
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me/revenues/{id} [patch]
func (h *LedgerHandler) UpdateRevenue(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req RevenuePatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rev, err := h.ledgerService.UpdateRevenue(c.Request().Context(), sess, id, service.RevenuePatch{
		Activity:    req.Activity,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, rev)
}

// CreateExpense godoc
// @Summary Record an expense at the caller's shop
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "Expense"
// @Success 201 {object} model.Expense
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /me/expenses [post]
func (h *LedgerHandler) CreateExpense(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req ExpenseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	exp, err := h.ledgerService.RecordExpense(c.Request().Context(), sess, service.ExpenseInput{
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

// UpdateExpense godoc
// @Summary Change an expense the caller recorded
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param request body ExpensePatchRequest true "Fields to change"
// @Success 200 {object} model.Expense
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me/expenses/{id} [patch]
func (h *LedgerHandler) UpdateExpense(c echo.Context) error {
	sess, err := CurrentSession(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ExpensePatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	exp, err := h.ledgerService.UpdateExpense(c.Request().Context(), sess, id, service.ExpensePatch{
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, exp)
}
