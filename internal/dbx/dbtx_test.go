package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `UPDATE accounts SET verified = true`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet(), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.NoError(t, mock.ExpectationsWereMet(), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db, mock := setupDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.False(t, called)
}

func TestWithTx_CommitError(t *testing.T) {
	db, mock := setupDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit tx")
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	other := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("db error: %w", dup)))
	assert.False(t, IsUniqueViolation(other))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))
}
