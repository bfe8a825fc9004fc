package router

import (
	"context"
	"log/slog"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"abantech/docs"
	"abantech/internal/auth"
	"abantech/internal/config"
	apperrors "abantech/internal/errors"
	"abantech/internal/handler"
	"abantech/internal/log"
	"abantech/internal/model"
	"abantech/internal/service"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	Ledger *handler.LedgerHandler
	Admin  *handler.AdminHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *log.Logger,
	jwtService *auth.JWTService,
	authService service.AuthService,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger.WithComponent("http")))

	e.Validator = NewValidator()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/shops", h.Admin.ListActiveShops)

	// Secured routes (require a valid access token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errorResponse(apperrors.ErrUnauthenticated)
		},
	}))

	secured.GET("/me", h.Auth.Me, RequireRole(authService, ""))

	// User views
	me := secured.Group("/me", RequireRole(authService, model.RoleUser))
	me.GET("/ledger", h.Ledger.Ledger)
	me.POST("/revenues", h.Ledger.CreateRevenue)
	me.PATCH("/revenues/:id", h.Ledger.UpdateRevenue)
	me.POST("/expenses", h.Ledger.CreateExpense)
	me.PATCH("/expenses/:id", h.Ledger.UpdateExpense)

	// Admin views
	admin := secured.Group("/admin", RequireRole(authService, model.RoleAdmin))
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/users", h.Admin.ListUsers)
	admin.PATCH("/users/:id", h.Admin.UpdateUser)
	admin.GET("/shops", h.Admin.ListShops)
	admin.POST("/shops", h.Admin.CreateShop)
	admin.PATCH("/shops/:id", h.Admin.UpdateShop)
	admin.POST("/expenses", h.Admin.CreateExpense)
}

// RequireRole authorizes the session named by the access token for role and
// stores it under handler.SessionContextKey. An empty role admits any active
// user. It must run after the JWT middleware.
func RequireRole(authService service.AuthService, role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.Claims)
			if !ok {
				return errorResponse(apperrors.ErrUnauthenticated)
			}
			sess, err := authService.Authorize(c.Request().Context(), claims.SessionID(), role)
			if err != nil {
				return errorResponse(err)
			}
			c.Set(handler.SessionContextKey, sess)
			return next(c)
		}
	}
}

func errorResponse(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.Status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	})
}
