package accounts

import (
	"context"

	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

// Repository persists accounts. Email lookups are case-insensitive; callers
// pass emails already lowercased.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	SetVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
}
