package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	// Database
	DBDriver   string
	MySQLDSN   string
	SQLitePath string

	// Redis and sessions
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	SessionBackend string

	JWTSecret   string
	SwaggerHost string

	// AMQP domain events; empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string

	LogLevel string
	PageSize int
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DBDriver:       getEnv("DB_DRIVER", "mysql"),
		MySQLDSN:       getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/abantech?charset=utf8mb4&parseTime=True&loc=Local"),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/abantech.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		SessionBackend: getEnv("SESSION_BACKEND", "redis"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
		AMQPURL:        os.Getenv("AMQP_URL"),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "abantech"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PageSize:       getEnvInt("PAGE_SIZE", 10),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.ServerPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid SERVER_PORT %q", c.ServerPort))
	}

	switch c.DBDriver {
	case "mysql":
		if c.MySQLDSN == "" {
			problems = append(problems, "MYSQL_DSN is required for the mysql driver")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER %q: must be mysql or sqlite", c.DBDriver))
	}

	switch c.SessionBackend {
	case "redis":
		if c.RedisAddr == "" {
			problems = append(problems, "REDIS_ADDR is required for the redis session backend")
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("invalid SESSION_BACKEND %q: must be redis or memory", c.SessionBackend))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET must not be empty")
	}

	if c.PageSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid PAGE_SIZE %d: must be positive", c.PageSize))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
