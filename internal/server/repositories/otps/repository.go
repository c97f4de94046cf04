package otps

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

// Repository persists hashed one-time codes.
type Repository interface {
	Create(ctx context.Context, otp *models.OTP) (*models.OTP, error)
	// FindLatestActive returns the most recently created record for
	// (accountID, purpose) that expires after now, or common.ErrNotFound.
	FindLatestActive(ctx context.Context, accountID string, purpose models.Purpose, now time.Time) (*models.OTP, error)
	DeleteByPurpose(ctx context.Context, accountID string, purpose models.Purpose) error
}
