package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"abantech/internal/auth"
	"abantech/internal/cache"
	"abantech/internal/config"
	"abantech/internal/db"
	"abantech/internal/events"
	"abantech/internal/handler"
	"abantech/internal/log"
	"abantech/internal/repository"
	"abantech/internal/router"
	"abantech/internal/service"
	"abantech/internal/session"
)

// @title Aban-Tech Business Management API
// @version 1.0
// @description Shop revenue and expense tracking with role-gated user and admin views.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Component = "server"
	logger := log.New(logCfg)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		logger.Error("Database init failed", "error", err, "driver", cfg.DBDriver)
		os.Exit(1)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn("Failed to drop tables (some may not exist)", "error", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		logger.Error("Auto-migrate failed", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	var sessions session.Store
	switch cfg.SessionBackend {
	case "redis":
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			logger.Warn("Redis unreachable, sessions will fail until it is back", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		sessions = session.NewRedisStore(cacheClient)
	default:
		sessions = session.NewMemoryStore()
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("AMQP init failed", "error", err, "exchange", cfg.AMQPExchange)
			os.Exit(1)
		}
		publisher = amqpPublisher
		logger.Info("Publishing domain events", "exchange", cfg.AMQPExchange)
	}
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	shopRepo := repository.NewShopRepository(gormDB)
	revenueRepo := repository.NewRevenueRepository(gormDB)
	expenseRepo := repository.NewExpenseRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Initialize services
	authService := service.NewAuthService(userRepo, shopRepo, sessions, jwtService, publisher, logger)
	ledgerService := service.NewLedgerService(revenueRepo, expenseRepo, shopRepo, publisher, logger, cfg.PageSize)
	adminService := service.NewAdminService(userRepo, shopRepo, revenueRepo, expenseRepo, cacheClient, publisher, logger, cfg.PageSize)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, logger, jwtService, authService, router.Handlers{
		Auth:   handler.NewAuthHandler(authService, logger),
		Ledger: handler.NewLedgerHandler(ledgerService, logger),
		Admin:  handler.NewAdminHandler(adminService, logger),
	})

	// Log swagger full path
	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(swaggerHost, "http://") && !strings.HasPrefix(swaggerHost, "https://") {
		swaggerHost = "http://" + swaggerHost
	}
	logger.Info("Swagger documentation available", "url", swaggerHost+"/swagger/index.html")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.ServerPort
	logger.Info("Starting server", "addr", addr, "db", cfg.DBDriver, "sessions", cfg.SessionBackend)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Error("Server start failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
