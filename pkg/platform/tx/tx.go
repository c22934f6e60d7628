// Package tx carries database transactions between services and stores.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

// Executor is what stores need from either *sql.DB or *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func WithTx(ctx context.Context, t *sql.Tx) context.Context {
	if t == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// From returns the transaction placed on ctx by WithTx or Run.
func From(ctx context.Context) (*sql.Tx, bool) {
	t, ok := ctx.Value(ctxKey{}).(*sql.Tx)
	return t, ok
}

// Run begins a transaction, hands it to fn on both the argument and the
// context, and commits when fn returns nil. Any error rolls back.
func Run(ctx context.Context, db *sql.DB, fn func(ctx context.Context, t *sql.Tx) error) error {
	t, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(WithTx(ctx, t), t); err != nil {
		_ = t.Rollback()
		return err
	}
	return t.Commit()
}
