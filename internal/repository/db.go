package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
)

// PostgreSQL error codes translated into domain kinds
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ DBTX = (*pgxpool.Pool)(nil)
	_ DBTX = (pgx.Tx)(nil)
)

// conflictMessages maps unique indexes to the message shown to clients
var conflictMessages = map[string]string{
	"products_name_key":         "a product with this name already exists",
	"dishes_name_key":           "a dish with this name already exists",
	"fasting_sessions_one_open": "an active fasting session already exists",
}

// referenceErrors maps reference violations, including those raised by the
// log entry item triggers, to the kind and message shown to clients
var referenceErrors = map[string]struct {
	kind apperr.Kind
	msg  string
}{
	"log_entries_item_exists":          {apperr.KindValidation, "the referenced item does not exist"},
	"log_entries_item_referenced":      {apperr.KindConflict, "the item is referenced by log entries"},
	"dish_ingredients_product_id_fkey": {apperr.KindConflict, "the product is used by a dish"},
}

// translateError converts driver errors into apperr kinds. what names the
// entity for not-found messages, op the failed operation for wrapping.
func translateError(err error, what, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFoundf("%s not found", what)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			msg, ok := conflictMessages[pgErr.ConstraintName]
			if !ok {
				msg = fmt.Sprintf("%s already exists", what)
			}
			return &apperr.Error{Kind: apperr.KindConflict, Messages: []string{msg}, Err: err}
		case pgForeignKeyViolation:
			if ref, ok := referenceErrors[pgErr.ConstraintName]; ok {
				return &apperr.Error{Kind: ref.kind, Messages: []string{ref.msg}, Err: err}
			}
			return apperr.Integrity(err, fmt.Sprintf("%s violates a data integrity constraint", what))
		case pgCheckViolation, pgNotNullViolation:
			return apperr.Integrity(err, fmt.Sprintf("%s violates a data integrity constraint", what))
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// inTx runs fn inside a transaction on pool, committing when fn succeeds
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
