package main

import (
	"context"
	"database/sql"
	"time"

	attendanceservice "presence/internal/attendance/service"
	attendancestore "presence/internal/attendance/store"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/tx"
)

const defaultAttendanceTxTimeout = 5 * time.Second

// attendancePostgresTx runs a save batch in one database transaction.
type attendancePostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

var _ attendanceservice.StoreTx = (*attendancePostgresTx)(nil)

func newAttendancePostgresTx(db *sql.DB) *attendancePostgresTx {
	return &attendancePostgresTx{db: db}
}

func (t *attendancePostgresTx) RunInTx(ctx context.Context, fn func(store attendancestore.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultAttendanceTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return tx.Run(ctx, t.db, func(_ context.Context, sqlTx *sql.Tx) error {
		return fn(attendancestore.NewPostgresTx(sqlTx))
	})
}
