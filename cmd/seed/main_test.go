package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abantech/internal/db"
	"abantech/internal/model"
	"abantech/internal/repository"
)

const legacyDB = `{
  "users": [
    {"id": 1, "email": "alice@example.com", "username": "alice", "password": "pw", "shopId": 1},
    {"id": 2, "email": "bob@example.com", "password": "pw", "role": "boss"}
  ],
  "shops": [{"id": 1, "name": "Kilimani", "status": "active"}],
  "revenues": [
    {"id": 1, "activity": "WiFi Hotspot", "amount": "500", "date": "2024-01-10", "shop": "Kilimani", "username": "alice"}
  ],
  "expenses": []
}`

func writeLegacy(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(legacyDB), 0o600))
	return path
}

func TestRun_ImportsFileTwice(t *testing.T) {
	file := writeLegacy(t)
	dbPath := filepath.Join(t.TempDir(), "seed.db")
	args := []string{"--file", file, "--driver", "sqlite", "--sqlite", dbPath}

	stdout := new(bytes.Buffer)
	require.NoError(t, run(args, stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "Skipped 1 invalid users")
	assert.Contains(t, stdout.String(), "New entities created: 3")

	stdout.Reset()
	require.NoError(t, run(args, stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "New entities created: 0")
	assert.Contains(t, stdout.String(), "Already present: 3")

	gormDB, err := db.NewSQLite(dbPath)
	require.NoError(t, err)
	defer func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	}()
	ctx := context.Background()

	alice, err := repository.NewUserRepository(gormDB).FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	shop, err := repository.NewShopRepository(gormDB).FindByName(ctx, "Kilimani")
	require.NoError(t, err)
	require.NotNil(t, alice.ShopID)
	assert.Equal(t, shop.ID, *alice.ShopID)

	revenues, err := repository.NewRevenueRepository(gormDB).ListForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, revenues, 1)
}

func TestRun_SkipsUserWithTakenUsername(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.db")
	gormDB, err := db.NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	users := repository.NewUserRepository(gormDB)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &model.User{Email: "carol@example.com", Username: "alice", PasswordHash: "x"}))
	sqlDB, _ := gormDB.DB()
	sqlDB.Close()

	stdout := new(bytes.Buffer)
	args := []string{"--file", writeLegacy(t), "--driver", "sqlite", "--sqlite", dbPath}
	require.NoError(t, run(args, stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "New entities created: 2")
	assert.Contains(t, stdout.String(), "Users skipped for a taken email or username: 1")

	gormDB, err = db.NewSQLite(dbPath)
	require.NoError(t, err)
	defer func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	}()
	_, err = repository.NewUserRepository(gormDB).FindByEmail(ctx, "alice@example.com")
	assert.Error(t, err)
}

func TestRun_DryRun(t *testing.T) {
	stdout := new(bytes.Buffer)
	require.NoError(t, run([]string{"--file", writeLegacy(t), "--dry-run"}, stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "Dry run: 3 entities would be imported")
}

func TestRun_RequiresOneSource(t *testing.T) {
	stdout := new(bytes.Buffer)
	err := run(nil, stdout, new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, stdout.String(), "Usage:")

	err = run([]string{"--url", "http://localhost:5000", "--file", "db.json"}, new(bytes.Buffer), new(bytes.Buffer))
	assert.Error(t, err)
}
