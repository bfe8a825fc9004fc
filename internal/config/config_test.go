package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_DRIVER", "SESSION_BACKEND", "PAGE_SIZE", "AMQP_URL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Empty(t, cfg.AMQPURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "5000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/test.db", cfg.SQLitePath)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{
		ServerPort:     "99999",
		DBDriver:       "postgres",
		SessionBackend: "file",
		JWTSecret:      "",
		PageSize:       0,
		LogLevel:       "loud",
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"SERVER_PORT", "DB_DRIVER", "SESSION_BACKEND", "JWT_SECRET", "PAGE_SIZE", "LOG_LEVEL"} {
		assert.Contains(t, err.Error(), want)
	}
}
