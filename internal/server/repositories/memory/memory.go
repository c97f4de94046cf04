// Package memory keeps accounts and one-time codes in process memory. It backs
// the server when no database DSN is configured and serves as the store in
// service and HTTP tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/otps"
	"github.com/google/uuid"
)

// Store holds all records. The zero value is not usable; call NewStore.
type Store struct {
	accountMu sync.RWMutex
	accounts  map[string]*models.Account
	byEmail   map[string]string

	otpMu sync.RWMutex
	otps  map[string]*models.OTP

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
		byEmail:  make(map[string]string),
		otps:     make(map[string]*models.OTP),
		now:      time.Now,
	}
}

// Manager adapts Store to the repository manager contract. The DBTX argument
// is ignored; there are no transactions in memory.
type Manager struct {
	store *Store
}

// NewManager wraps s. Several managers may share one store.
func NewManager(s *Store) *Manager {
	return &Manager{store: s}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Accounts(dbx.DBTX) accounts.Repository { return (*accountRepo)(m.store) }

func (m *Manager) OTPs(dbx.DBTX) otps.Repository { return (*otpRepo)(m.store) }

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type accountRepo Store

func (r *accountRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.accountMu.Lock()
	defer r.accountMu.Unlock()

	k := key(a.Email)
	if _, taken := r.byEmail[k]; taken {
		return nil, common.ErrConflict
	}

	now := r.now()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now

	cp := *a
	r.accounts[a.ID] = &cp
	r.byEmail[k] = a.ID
	return a, nil
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.accountMu.RLock()
	defer r.accountMu.RUnlock()

	id, ok := r.byEmail[key(email)]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *r.accounts[id]
	return &cp, nil
}

func (r *accountRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.accountMu.RLock()
	defer r.accountMu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *accountRepo) update(id string, fn func(a *models.Account)) error {
	r.accountMu.Lock()
	defer r.accountMu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(a)
	a.UpdatedAt = r.now()
	return nil
}

func (r *accountRepo) SetVerified(_ context.Context, id string) error {
	return r.update(id, func(a *models.Account) { a.Verified = true })
}

func (r *accountRepo) UpdatePassword(_ context.Context, id string, hash string) error {
	return r.update(id, func(a *models.Account) { a.PasswordHash = hash })
}

func (r *accountRepo) UpdateRole(_ context.Context, id string, role models.Role) error {
	return r.update(id, func(a *models.Account) { a.Role = role })
}

type otpRepo Store

func (r *otpRepo) Create(_ context.Context, o *models.OTP) (*models.OTP, error) {
	r.otpMu.Lock()
	defer r.otpMu.Unlock()

	o.ID = uuid.NewString()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now()
	}
	cp := *o
	r.otps[o.ID] = &cp
	return o, nil
}

func (r *otpRepo) FindLatestActive(_ context.Context, accountID string, purpose models.Purpose, now time.Time) (*models.OTP, error) {
	r.otpMu.RLock()
	defer r.otpMu.RUnlock()

	var active []*models.OTP
	for _, o := range r.otps {
		if o.AccountID == accountID && o.Purpose == purpose && !o.Expired(now) {
			active = append(active, o)
		}
	}
	if len(active) == 0 {
		return nil, common.ErrNotFound
	}
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.After(active[j].CreatedAt) })
	cp := *active[0]
	return &cp, nil
}

func (r *otpRepo) DeleteByPurpose(_ context.Context, accountID string, purpose models.Purpose) error {
	r.otpMu.Lock()
	defer r.otpMu.Unlock()

	for id, o := range r.otps {
		if o.AccountID == accountID && o.Purpose == purpose {
			delete(r.otps, id)
		}
	}
	return nil
}
