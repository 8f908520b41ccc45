package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/and161185/pocketfile/internal/errs"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	require.NoError(t, translate(nil))
	require.ErrorIs(t, translate(pgx.ErrNoRows), errs.ErrNotFound)
	require.ErrorIs(t, translate(&pgconn.PgError{Code: "23505"}), errs.ErrAlreadyExists)
	require.ErrorIs(t, translate(&pgconn.PgError{Code: "23503", ConstraintName: "other_fkey"}), errs.ErrValidation)

	boom := errors.New("boom")
	require.Equal(t, boom, translate(boom))

	other := &pgconn.PgError{Code: "40001"}
	require.Equal(t, error(other), translate(other))
}

func TestDB_PingAndClose(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing()
	require.NoError(t, db.Ping(context.Background()))
	mock.ExpectClose()
	db.Close()
	require.NoError(t, mock.ExpectationsWereMet())
}
