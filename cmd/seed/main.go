package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"abantech/internal/backend"
	"abantech/internal/config"
	"abantech/internal/db"
	apperrors "abantech/internal/errors"
	"abantech/internal/repository"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run imports a legacy json-server backend, read either live from --url or
// from a db.json export given by --file. Entities that already exist are left
// untouched, so the import can be repeated.
func run(args []string, stdout, stderr io.Writer) error {
	cfg := config.Load()

	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	backendURL := fs.String("url", "", "Legacy backend base URL, e.g. http://localhost:5000")
	file := fs.String("file", "", "Legacy db.json export")
	dryRun := fs.Bool("dry-run", false, "Convert and report without writing")
	timeout := fs.Duration("timeout", backend.DefaultTimeout, "Timeout for fetching the backend")
	driver := fs.String("driver", cfg.DBDriver, "Database driver: mysql or sqlite")
	sqlitePath := fs.String("sqlite", cfg.SQLitePath, "SQLite database path")
	mysqlDSN := fs.String("mysql-dsn", cfg.MySQLDSN, "MySQL DSN")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*backendURL == "") == (*file == "") {
		fmt.Fprintln(stdout, "Usage: seed (--url <backend> | --file <db.json>) [--dry-run]")
		fs.PrintDefaults()
		return fmt.Errorf("exactly one of --url or --file is required")
	}

	ctx := context.Background()

	var snap *backend.Snapshot
	var err error
	if *file != "" {
		fmt.Fprintf(stdout, "Loading snapshot from %s\n", *file)
		snap, err = backend.LoadSnapshot(*file)
	} else {
		fmt.Fprintf(stdout, "Fetching snapshot from %s\n", *backendURL)
		fetchCtx, cancel := context.WithTimeout(ctx, *timeout)
		snap, err = backend.NewClient(*backendURL, nil).Snapshot(fetchCtx)
		cancel()
	}
	if err != nil {
		return fmt.Errorf("failed to read legacy data: %w", err)
	}

	im, err := backend.Convert(snap)
	if err != nil {
		return fmt.Errorf("failed to convert legacy data: %w", err)
	}
	for _, coll := range []backend.Collection{backend.Shops, backend.Users, backend.Revenues, backend.Expenses} {
		if n := im.Skipped[coll]; n > 0 {
			fmt.Fprintf(stdout, "Skipped %d invalid %s\n", n, coll)
		}
	}

	if *dryRun {
		fmt.Fprintf(stdout, "Dry run: %d entities would be imported\n", im.Converted())
		return nil
	}

	gormDB, err := db.Open(*driver, *mysqlDSN, *sqlitePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	start := time.Now()
	res, err := seed(ctx, im, seedRepos{
		users:    repository.NewUserRepository(gormDB),
		shops:    repository.NewShopRepository(gormDB),
		revenues: repository.NewRevenueRepository(gormDB),
		expenses: repository.NewExpenseRepository(gormDB),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Seed completed successfully!")
	fmt.Fprintf(stdout, "  - New entities created: %d\n", res.created)
	fmt.Fprintf(stdout, "  - Already present: %d\n", res.existing)
	if res.conflicts > 0 {
		fmt.Fprintf(stdout, "  - Users skipped for a taken email or username: %d\n", res.conflicts)
	}
	fmt.Fprintf(stdout, "  - Took: %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

type seedRepos struct {
	users    repository.UserRepository
	shops    repository.ShopRepository
	revenues repository.RevenueRepository
	expenses repository.ExpenseRepository
}

type seedResult struct {
	created   int
	existing  int
	conflicts int
}

// seed writes the import, shops first so users can point at them. Shops are
// matched by name, users by email and records by id. A new user whose email
// or username already names a different account is skipped.
func seed(ctx context.Context, im *backend.Import, r seedRepos) (seedResult, error) {
	var res seedResult
	shopIDs := map[uuid.UUID]uuid.UUID{}
	for i := range im.Shops {
		shop := im.Shops[i]
		found, err := r.shops.FindByName(ctx, shop.Name)
		switch {
		case err == nil:
			shopIDs[shop.ID] = found.ID
			res.existing++
			continue
		case !errors.Is(err, apperrors.ErrNotFound):
			return res, fmt.Errorf("error checking shop %s: %w", shop.Name, err)
		}
		if err := r.shops.Create(ctx, &shop); err != nil {
			return res, fmt.Errorf("error creating shop %s: %w", shop.Name, err)
		}
		shopIDs[shop.ID] = shop.ID
		res.created++
	}

	for i := range im.Users {
		user := im.Users[i]
		_, err := r.users.FindByEmail(ctx, user.Email)
		switch {
		case err == nil:
			res.existing++
			continue
		case !errors.Is(err, apperrors.ErrNotFound):
			return res, fmt.Errorf("error checking user %s: %w", user.Email, err)
		}
		taken, err := identifierTaken(ctx, r.users, user.Email, user.Username)
		if err != nil {
			return res, fmt.Errorf("error checking user %s: %w", user.Email, err)
		}
		if taken {
			res.conflicts++
			continue
		}
		if user.ShopID != nil {
			id := shopIDs[*user.ShopID]
			user.ShopID = &id
		}
		if err := r.users.Create(ctx, &user); err != nil {
			return res, fmt.Errorf("error creating user %s: %w", user.Email, err)
		}
		res.created++
	}

	for i := range im.Revenues {
		rev := im.Revenues[i]
		_, err := r.revenues.FindByID(ctx, rev.ID)
		switch {
		case err == nil:
			res.existing++
			continue
		case !errors.Is(err, apperrors.ErrNotFound):
			return res, fmt.Errorf("error checking revenue %s: %w", rev.ID, err)
		}
		if err := r.revenues.Create(ctx, &rev); err != nil {
			return res, fmt.Errorf("error creating revenue %s: %w", rev.ID, err)
		}
		res.created++
	}

	for i := range im.Expenses {
		exp := im.Expenses[i]
		_, err := r.expenses.FindByID(ctx, exp.ID)
		switch {
		case err == nil:
			res.existing++
			continue
		case !errors.Is(err, apperrors.ErrNotFound):
			return res, fmt.Errorf("error checking expense %s: %w", exp.ID, err)
		}
		if err := r.expenses.Create(ctx, &exp); err != nil {
			return res, fmt.Errorf("error creating expense %s: %w", exp.ID, err)
		}
		res.created++
	}

	return res, nil
}

func identifierTaken(ctx context.Context, users repository.UserRepository, names ...string) (bool, error) {
	for _, name := range names {
		if name == "" {
			continue
		}
		_, err := repository.FindByIdentifier(ctx, users, name)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return false, err
		}
	}
	return false, nil
}
