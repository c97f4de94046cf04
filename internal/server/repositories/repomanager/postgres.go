// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/server/migrations"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/otps"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// OTPs returns an otps.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) OTPs(db dbx.DBTX) otps.Repository {
	return otps.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Prepare points goose at the embedded migrations and the pgx dialect.
// cmd/migrate calls it before running goose commands directly.
func Prepare() error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// RunMigrations applies all pending embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := Prepare(); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// Open opens a pgx-backed *sql.DB for dsn and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
