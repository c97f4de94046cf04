// Package accounts provides the PostgreSQL-backed account repository.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts account and fills in the generated ID and timestamps.
// A duplicate email (case-insensitive) yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (full_name, email, password_hash, role, verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.FullName, account.Email, account.PasswordHash, string(account.Role), account.Verified,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

const selectAccount = `
	SELECT id, full_name, email, password_hash, role, verified, created_at, updated_at
	FROM accounts
`

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	var role string
	err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &role, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.Role = models.Role(role)
	return a, nil
}

// GetByEmail returns the account registered under email, or common.ErrNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectAccount+`WHERE lower(email) = lower($1)`, email))
}

// GetByID returns the account with the given id, or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectAccount+`WHERE id = $1`, id))
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetVerified marks the account verified. A missing id yields common.ErrNotFound,
// as do UpdatePassword and UpdateRole.
func (r *PostgresRepository) SetVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE accounts SET verified = TRUE, updated_at = now() WHERE id = $1`, id)
}

// UpdatePassword stores a new password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
}

// UpdateRole stores role.
func (r *PostgresRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.exec(ctx, `UPDATE accounts SET role = $2, updated_at = now() WHERE id = $1`, id, string(role))
}
