package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "abantech/internal/errors"
	"abantech/internal/log"
	"abantech/internal/session"
)

// SessionContextKey is where the router's role middleware stores the
// authorized *session.Session.
const SessionContextKey = "session"

// CurrentSession returns the session authorized for this request.
func CurrentSession(c echo.Context) (*session.Session, error) {
	sess, ok := c.Get(SessionContextKey).(*session.Session)
	if !ok || sess == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return sess, nil
}

// errorResponder turns service errors into JSON error responses.
type errorResponder struct {
	logger *log.Logger
}

func newErrorResponder(logger *log.Logger) errorResponder {
	if logger == nil {
		logger = log.Discard()
	}
	return errorResponder{logger: logger}
}

// fail maps err to its HTTP status. Server-side failures are logged here,
// once, with the request that caused them.
func (r errorResponder) fail(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		req := c.Request()
		r.logger.ErrorContext(req.Context(), "request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"status", httpErr.StatusCode,
			"error", err,
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// bind decodes and validates the request into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid request body",
			Code:  "VALIDATION_ERROR",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid id",
			Code:  "VALIDATION_ERROR",
		})
	}
	return id, nil
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
