package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/otps"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	var m RepositoryManager = NewPostgresRepositoryManager()
	require.NotNil(t, m)
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	assert.IsType(t, &accounts.PostgresRepository{}, m.Accounts(db))
	assert.IsType(t, &otps.PostgresRepository{}, m.OTPs(db))
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	require.NoError(t, m.RunMigrations(context.Background(), db))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpen_BadDSN(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, "postgres://nobody@127.0.0.1:1/none?connect_timeout=1")
	require.Error(t, err)
}
