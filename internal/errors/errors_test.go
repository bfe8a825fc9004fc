package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		redirect string
	}{
		{name: "validation", err: NewValidationError("password", "passwords do not match"), status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "wrapped validation", err: fmt.Errorf("register: %w", NewValidationError("email", "required")), status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "bad credentials", err: ErrInvalidCredentials, status: http.StatusUnauthorized, code: "INVALID_CREDENTIALS"},
		{name: "no session", err: ErrUnauthenticated, status: http.StatusUnauthorized, code: "UNAUTHENTICATED", redirect: LoginRedirect},
		{name: "fired", err: ErrAccountDeactivated, status: http.StatusForbidden, code: "ACCOUNT_DEACTIVATED", redirect: LoginRedirect},
		{name: "wrapped fired", err: fmt.Errorf("authorize: %w", ErrAccountDeactivated), status: http.StatusForbidden, code: "ACCOUNT_DEACTIVATED", redirect: LoginRedirect},
		{name: "forbidden", err: ErrForbidden, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "not found", err: ErrNotFound, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "duplicate user", err: ErrUserAlreadyExists, status: http.StatusConflict, code: "USER_ALREADY_EXISTS"},
		{name: "duplicate shop", err: ErrShopAlreadyExists, status: http.StatusConflict, code: "SHOP_ALREADY_EXISTS"},
		{name: "network", err: &NetworkError{Op: "GET", URL: "http://backend/users", StatusCode: 503}, status: http.StatusBadGateway, code: "NETWORK_ERROR"},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.redirect, httpErr.ToErrorResponse().Redirect)
		})
	}
}

func TestNetworkErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "GET", URL: "http://backend/shops", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")

	status := &NetworkError{Op: "PATCH", URL: "http://backend/users/1", StatusCode: 404}
	assert.Equal(t, "PATCH http://backend/users/1: unexpected status 404", status.Error())
}
