// Package otps provides the PostgreSQL-backed one-time code repository.
package otps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

// Create stores otp. CreatedAt is taken from the record when set so that
// ordering follows the service clock rather than the database clock.
func (r *PostgresRepository) Create(ctx context.Context, otp *models.OTP) (*models.OTP, error) {
	query := `
		INSERT INTO otps (account_id, purpose, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		RETURNING id, created_at
	`
	var createdAt any
	if !otp.CreatedAt.IsZero() {
		createdAt = otp.CreatedAt
	}
	err := r.db.QueryRowContext(ctx, query,
		otp.AccountID, string(otp.Purpose), otp.CodeHash, otp.ExpiresAt, createdAt,
	).Scan(&otp.ID, &otp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return otp, nil
}

// FindLatestActive returns the newest code for (accountID, purpose) that
// expires after now, or common.ErrNotFound.
func (r *PostgresRepository) FindLatestActive(ctx context.Context, accountID string, purpose models.Purpose, now time.Time) (*models.OTP, error) {
	query := `
		SELECT id, account_id, purpose, code_hash, expires_at, created_at
		FROM otps
		WHERE account_id = $1 AND purpose = $2 AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	o := &models.OTP{}
	var p string
	err := r.db.QueryRowContext(ctx, query, accountID, string(purpose), now).
		Scan(&o.ID, &o.AccountID, &p, &o.CodeHash, &o.ExpiresAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	o.Purpose = models.Purpose(p)
	return o, nil
}

// DeleteByPurpose removes every record for (accountID, purpose). Deleting
// nothing is not an error.
func (r *PostgresRepository) DeleteByPurpose(ctx context.Context, accountID string, purpose models.Purpose) error {
	query := `DELETE FROM otps WHERE account_id = $1 AND purpose = $2`
	if _, err := r.db.ExecContext(ctx, query, accountID, string(purpose)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
