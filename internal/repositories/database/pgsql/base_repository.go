package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes the repositories react to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgRestrictViolation    = "23001"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, mapPgError(err, "failed to begin transaction")
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err, "failed to commit transaction")
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// withTx runs fn in a transaction that commits when fn returns nil.
func (r *BaseRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(context.WithoutCancel(ctx), tx) // No-op after a successful commit

	if err := fn(tx); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// mapPgError translates driver failures into apperrors kinds. Constraint-specific
// translations happen at the call site before falling back to this.
func mapPgError(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgQueryCanceled:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrLockTimeout, op, pgErr.Message)
		case pgSerializationFailure:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrTransient, op, pgErr.Message)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, op, pgErr.ConstraintName)
		case pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, op, pgErr.ConstraintName)
		case pgRestrictViolation:
			return apperrors.NewAppError(500, op+": ledger rows are append-only", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrTransient, op, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrTransient, op, err)
	}
	return apperrors.NewAppError(500, op, err)
}

// constraintOf returns the violated constraint name, if err is a constraint violation.
func constraintOf(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
