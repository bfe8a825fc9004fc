package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"abantech/internal/auth"
	"abantech/internal/config"
	"abantech/internal/db"
	apperrors "abantech/internal/errors"
	"abantech/internal/model"
	"abantech/internal/repository"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run creates an admin account, or promotes and reactivates an existing
// account with the same email. Registration only ever creates users, so this
// is how the first admin comes to exist.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg := config.Load()

	fs := pflag.NewFlagSet("addadmin", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Admin email")
	username := fs.String("username", "", "Optional username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	driver := fs.String("driver", cfg.DBDriver, "Database driver: mysql or sqlite")
	sqlitePath := fs.String("sqlite", cfg.SQLitePath, "SQLite database path")
	mysqlDSN := fs.String("mysql-dsn", cfg.MySQLDSN, "MySQL DSN")

	if err := fs.Parse(args); err != nil {
		return err
	}

	addr := strings.ToLower(strings.TrimSpace(*email))
	if addr == "" {
		fmt.Fprintln(stdout, "Usage: addadmin --email <email> [--username <name>] [--password <password>] [--driver sqlite --sqlite <path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
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

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)

	existing, err := users.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		if _, err := users.Patch(ctx, existing.ID, map[string]interface{}{
			"role":   model.RoleAdmin,
			"status": model.UserStatusActive,
		}); err != nil {
			return fmt.Errorf("failed to promote user: %w", err)
		}
		fmt.Fprintf(stdout, "User %s promoted to admin\n", addr)
		return nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("failed to look up user: %w", err)
	}

	// The email and username become owner identifiers and must not name
	// anyone else.
	name := strings.TrimSpace(*username)
	for _, id := range []string{addr, name} {
		if id == "" {
			continue
		}
		_, err := repository.FindByIdentifier(ctx, users, id)
		if err == nil {
			return fmt.Errorf("identifier %s already exists", id)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to look up user: %w", err)
		}
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        addr,
		Username:     name,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.UserStatusActive,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Fprintf(stdout, "Admin %s created successfully with ID %s\n", admin.Email, admin.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Non-terminal input such as pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
