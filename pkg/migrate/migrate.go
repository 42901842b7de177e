package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// Target names one of the shared databases with embedded migrations. Tenant
// chat stores are schema-managed at provisioning time instead.
type Target string

const (
	TargetIdentity Target = "identity"
	TargetSecurity Target = "security"
	TargetAdmin    Target = "admin"
)

// Targets lists every shared database in the order setup applies them.
func Targets() []Target {
	return []Target{TargetIdentity, TargetSecurity, TargetAdmin}
}

// Up applies all pending migrations for the target database.
func Up(ctx context.Context, db *sql.DB, target Target) error {
	return run(ctx, db, target, func(dir string) error {
		return goose.UpContext(ctx, db, dir)
	})
}

// Status prints the migration status for the target database to stdout.
func Status(ctx context.Context, db *sql.DB, target Target) error {
	return run(ctx, db, target, func(dir string) error {
		return goose.StatusContext(ctx, db, dir)
	})
}

func run(ctx context.Context, db *sql.DB, target Target, fn func(dir string) error) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dir := "migrations/" + string(target)
	if _, err := fs.Stat(migrationsFS, dir); err != nil {
		return fmt.Errorf("unknown migration target %q: %w", target, err)
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := fn(dir); err != nil {
		return fmt.Errorf("goose %s: %w", target, err)
	}
	return nil
}
