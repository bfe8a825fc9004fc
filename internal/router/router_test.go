package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abantech/internal/auth"
	"abantech/internal/config"
	"abantech/internal/db"
	apperrors "abantech/internal/errors"
	"abantech/internal/events"
	"abantech/internal/handler"
	"abantech/internal/log"
	"abantech/internal/model"
	"abantech/internal/repository"
	"abantech/internal/service"
	"abantech/internal/session"
)

type testServer struct {
	echo      *echo.Echo
	users     repository.UserRepository
	shops     repository.ShopRepository
	published *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gormDB, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	logger := log.Discard()
	users := repository.NewUserRepository(gormDB)
	shops := repository.NewShopRepository(gormDB)
	revenues := repository.NewRevenueRepository(gormDB)
	expenses := repository.NewExpenseRepository(gormDB)
	recorder := &events.Recorder{}

	jwtService := auth.NewJWTService("test-secret")
	authService := service.NewAuthService(users, shops, session.NewMemoryStore(), jwtService, recorder, logger)
	ledgerService := service.NewLedgerService(revenues, expenses, shops, recorder, logger, 10)
	adminService := service.NewAdminService(users, shops, revenues, expenses, nil, recorder, logger, 10)

	e := echo.New()
	Register(e, &config.Config{}, logger, jwtService, authService, Handlers{
		Auth:   handler.NewAuthHandler(authService, logger),
		Ledger: handler.NewLedgerHandler(ledgerService, logger),
		Admin:  handler.NewAdminHandler(adminService, logger),
	})

	return &testServer{echo: e, users: users, shops: shops, published: recorder}
}

func (s *testServer) addShop(t *testing.T, name string) *model.Shop {
	t.Helper()
	shop := &model.Shop{Name: name}
	require.NoError(t, s.shops.Create(context.Background(), shop))
	return shop
}

func (s *testServer) addUser(t *testing.T, email, username string, role model.Role, shop *model.Shop) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	user := &model.User{Email: email, Username: username, PasswordHash: hash, Role: role}
	if shop != nil {
		user.ShopID = &shop.ID
	}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Email: email, Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

type ledgerBody struct {
	Owner    string `json:"owner"`
	Revenues struct {
		Page struct {
			Items []model.Revenue `json:"items"`
			Total int             `json:"total"`
		} `json:"page"`
	} `json:"revenues"`
	RangeRequired bool `json:"range_required"`
}

func decodeLedger(t *testing.T, rec *httptest.ResponseRecorder) ledgerBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body ledgerBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLedgerShowsOnlyOwnRecords(t *testing.T) {
	s := newTestServer(t)
	shop := s.addShop(t, "Kilimani")
	s.addUser(t, "alice@example.com", "alice", model.RoleUser, shop)
	s.addUser(t, "bob@example.com", "", model.RoleUser, shop)

	alice := s.login(t, "alice@example.com")
	bob := s.login(t, "bob@example.com")

	rec := s.do(t, http.MethodPost, "/api/me/revenues", alice, map[string]string{
		"activity": string(model.ActivityWiFiHotspot),
		"amount":   "500",
		"date":     "2024-01-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Revenue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "Kilimani", created.Shop)

	query := "/api/me/ledger?from=2024-01-01&to=2024-01-31"

	mine := decodeLedger(t, s.do(t, http.MethodGet, query, alice, nil))
	assert.Equal(t, "alice", mine.Owner)
	require.Len(t, mine.Revenues.Page.Items, 1)
	assert.Equal(t, created.ID, mine.Revenues.Page.Items[0].ID)

	theirs := decodeLedger(t, s.do(t, http.MethodGet, query, bob, nil))
	assert.Equal(t, "bob@example.com", theirs.Owner)
	assert.Empty(t, theirs.Revenues.Page.Items)

	rec = s.do(t, http.MethodPatch, "/api/me/revenues/"+created.ID.String(), bob, map[string]string{"amount": "1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Contains(t, s.published.Types(), events.RevenueRecorded)
}

func TestLedgerWithoutRangeIsEmpty(t *testing.T) {
	s := newTestServer(t)
	shop := s.addShop(t, "Kilimani")
	s.addUser(t, "alice@example.com", "alice", model.RoleUser, shop)
	alice := s.login(t, "alice@example.com")

	rec := s.do(t, http.MethodPost, "/api/me/revenues", alice, map[string]string{
		"activity": string(model.ActivityStationery),
		"amount":   "40",
		"date":     "2024-01-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeLedger(t, s.do(t, http.MethodGet, "/api/me/ledger", alice, nil))
	assert.True(t, body.RangeRequired)
	assert.Empty(t, body.Revenues.Page.Items)
	assert.Zero(t, body.Revenues.Page.Total)
}

func TestFiredUserIsSentToLogin(t *testing.T) {
	s := newTestServer(t)
	shop := s.addShop(t, "Kilimani")
	alice := s.addUser(t, "alice@example.com", "alice", model.RoleUser, shop)
	s.addUser(t, "root@example.com", "", model.RoleAdmin, nil)

	aliceToken := s.login(t, "alice@example.com")
	adminToken := s.login(t, "root@example.com")

	rec := s.do(t, http.MethodGet, "/api/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPatch, "/api/admin/users/"+alice.ID.String(), adminToken, map[string]string{"status": "fired"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/me/ledger?from=2024-01-01", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", body.Code)
	assert.Equal(t, apperrors.LoginRedirect, body.Redirect)

	// The session is gone, so the same token no longer names anyone.
	rec = s.do(t, http.MethodGet, "/api/me/ledger?from=2024-01-01", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", decodeError(t, rec).Code)
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t)
	shop := s.addShop(t, "Kilimani")
	s.addUser(t, "alice@example.com", "alice", model.RoleUser, shop)
	s.addUser(t, "root@example.com", "", model.RoleAdmin, nil)

	alice := s.login(t, "alice@example.com")
	admin := s.login(t, "root@example.com")

	rec := s.do(t, http.MethodGet, "/api/admin/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/me/ledger", admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/dashboard?from=2024-01-01", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestMissingOrForgedToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/me/ledger", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, rec).Code)

	forged, err := auth.NewJWTService("other-secret").GenerateAccessToken(uuid.NewString(), &model.User{ID: uuid.New(), Email: "x@example.com", Role: model.RoleAdmin})
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/api/admin/users", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndListShops(t *testing.T) {
	s := newTestServer(t)
	open := s.addShop(t, "Kilimani")
	closed := s.addShop(t, "Westlands")
	_, err := s.shops.Patch(context.Background(), closed.ID, map[string]interface{}{"status": model.ShopStatusClosed})
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/shops", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var shops []model.Shop
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shops))
	require.Len(t, shops, 1)
	assert.Equal(t, open.ID, shops[0].ID)

	rec = s.do(t, http.MethodPost, "/api/auth/register", "", handler.RegisterRequest{
		Email:           "carol@example.com",
		Username:        "carol",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		ShopID:          open.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/register", "", handler.RegisterRequest{
		Email:           "dave@example.com",
		Password:        "secret123",
		ConfirmPassword: "different",
		ShopID:          open.ID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.login(t, "carol@example.com")
}
