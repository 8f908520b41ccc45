// Package postgres contains PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/and161185/pocketfile/internal/errs"
)

// PgxPool is a minimal abstraction over a Postgres connection pool,
// used by repositories. It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	// Exec executes a SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// Query executes a SELECT and returns a rows iterator.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// QueryRow executes a query expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// BeginTx starts a transaction with the provided options.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// Close shuts down the pool and frees resources.
	Close()
}

// DB wraps pgxpool.Pool to satisfy repository constructors and allow testing.
type DB struct{ Pool PgxPool }

// Readiness controls how long Open waits for the server to accept connections.
type Readiness struct {
	Attempts uint64
	Delay    time.Duration
}

// DefaultReadiness waits up to ~30s, enough for a database container starting alongside.
var DefaultReadiness = Readiness{Attempts: 10, Delay: 3 * time.Second}

// Open creates a connection pool for dsn and waits until the server answers a ping.
func Open(ctx context.Context, dsn string, rd Readiness, log *zap.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if rd.Attempts == 0 {
		rd.Attempts = 1
	}
	if rd.Delay <= 0 {
		rd.Delay = time.Second // retry.NewConstant panics on non-positive values
	}

	attempt := uint64(0)
	b := retry.WithMaxRetries(rd.Attempts-1, retry.NewConstant(rd.Delay))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			log.Warn("database not ready",
				zap.Uint64("attempt", attempt),
				zap.Uint64("of", rd.Attempts),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("database not ready after %d attempts: %w", rd.Attempts, err)
	}
	return &DB{Pool: pool}, nil
}

// Ping checks database connectivity.
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

// Close closes the underlying pool.
func (db *DB) Close() { db.Pool.Close() }

// inTx runs fn inside a transaction, committing on success and rolling back otherwise.
func (db *DB) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()
	return fn(tx)
}

// Postgres error codes we translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// constraintMessages maps named constraints to client-facing reasons.
var constraintMessages = map[string]string{
	"users_username_key":    "username already exists",
	"users_email_key":       "email already exists",
	"files_project_id_fkey": "project does not exist",
}

// translate maps driver errors onto errs sentinels; unknown errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return err
	}
	switch pg.Code {
	case codeUniqueViolation:
		if msg, ok := constraintMessages[pg.ConstraintName]; ok {
			return fmt.Errorf("%w: %s", errs.ErrAlreadyExists, msg)
		}
		return errs.ErrAlreadyExists
	case codeForeignKeyViolation:
		if msg, ok := constraintMessages[pg.ConstraintName]; ok {
			return fmt.Errorf("%w: %s", errs.ErrValidation, msg)
		}
		return fmt.Errorf("%w: referenced row does not exist", errs.ErrValidation)
	}
	return err
}
