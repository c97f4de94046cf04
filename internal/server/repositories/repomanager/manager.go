package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/otps"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code path
// works on a plain connection pool and inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	OTPs(db dbx.DBTX) otps.Repository
}
