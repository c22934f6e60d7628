package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"presence/internal/attendance/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/tx"
)

// Postgres stores records in the attendance table.
type Postgres struct {
	db tx.Executor
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// NewPostgresTx binds the store to an open transaction.
func NewPostgresTx(t *sql.Tx) *Postgres {
	return &Postgres{db: t}
}

func (s *Postgres) exec(ctx context.Context) tx.Executor {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

const selectColumns = `id, initials, display_name, level,
	to_char(week_start, 'YYYY-MM-DD'), to_char(week_end, 'YYYY-MM-DD'),
	iso_week, attendance_days, confirmed_at`

func (s *Postgres) ListByWeeks(ctx context.Context, weekStarts []string) ([]models.AttendanceRecord, error) {
	if len(weekStarts) == 0 {
		return nil, nil
	}
	rows, err := s.exec(ctx).QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM attendance
		WHERE week_start = ANY($1::date[])
		ORDER BY week_start, person_key
	`, pq.Array(weekStarts))
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []models.AttendanceRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return out, nil
}

// UpsertBatch writes all records in one statement.
func (s *Postgres) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) ([]models.AttendanceRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}
	n := len(records)
	var (
		ids          = make([]string, 0, n)
		keys         = make([]string, 0, n)
		initials     = make([]string, 0, n)
		names        = make([]string, 0, n)
		levels       = make([]string, 0, n)
		weekStarts   = make([]string, 0, n)
		weekEnds     = make([]string, 0, n)
		isoWeeks     = make([]int64, 0, n)
		days         = make([]string, 0, n)
		confirmedAts = make([]sql.NullString, 0, n)
	)
	for _, r := range records {
		ids = append(ids, r.ID.String())
		keys = append(keys, r.Initials.Key())
		initials = append(initials, r.Initials.String())
		names = append(names, r.DisplayName)
		levels = append(levels, r.Level)
		weekStarts = append(weekStarts, r.WeekStart)
		weekEnds = append(weekEnds, r.WeekEnd)
		isoWeeks = append(isoWeeks, int64(r.ISOWeek))
		days = append(days, r.AttendanceDays)
		var at sql.NullString
		if r.ConfirmedAt != nil {
			at = sql.NullString{String: r.ConfirmedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		confirmedAts = append(confirmedAts, at)
	}

	rows, err := s.exec(ctx).QueryContext(ctx, `
		INSERT INTO attendance (id, person_key, initials, display_name, level,
			week_start, week_end, iso_week, attendance_days, confirmed_at)
		SELECT * FROM unnest(
			$1::uuid[], $2::text[], $3::text[], $4::text[], $5::text[],
			$6::date[], $7::date[], $8::int[], $9::text[], $10::timestamptz[])
		ON CONFLICT (person_key, week_start) DO UPDATE SET
			initials = EXCLUDED.initials,
			display_name = EXCLUDED.display_name,
			level = EXCLUDED.level,
			week_end = EXCLUDED.week_end,
			iso_week = EXCLUDED.iso_week,
			attendance_days = EXCLUDED.attendance_days,
			confirmed_at = EXCLUDED.confirmed_at
		RETURNING `+selectColumns,
		pq.Array(ids), pq.Array(keys), pq.Array(initials), pq.Array(names), pq.Array(levels),
		pq.Array(weekStarts), pq.Array(weekEnds), pq.Array(isoWeeks), pq.Array(days), pq.Array(confirmedAts),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	defer rows.Close()

	// RETURNING order is unspecified.
	stored := make(map[string]models.AttendanceRecord, n)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		stored[slotKey(r.Initials.Key(), r.WeekStart)] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upserted attendance: %w", err)
	}

	out := make([]models.AttendanceRecord, 0, n)
	for _, r := range records {
		got, ok := stored[slotKey(r.Initials.Key(), r.WeekStart)]
		if !ok {
			return nil, fmt.Errorf("upsert attendance: missing row for %s %s", r.Initials, r.WeekStart)
		}
		out = append(out, got)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (models.AttendanceRecord, error) {
	var (
		r           models.AttendanceRecord
		rawID       string
		initials    string
		confirmedAt sql.NullTime
	)
	if err := row.Scan(&rawID, &initials, &r.DisplayName, &r.Level,
		&r.WeekStart, &r.WeekEnd, &r.ISOWeek, &r.AttendanceDays, &confirmedAt); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("scan attendance: %w", err)
	}
	recordID, err := id.ParseRecordID(rawID)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("scan attendance id %q: %w", rawID, err)
	}
	r.ID = recordID
	r.Initials = id.Initials(initials)
	if confirmedAt.Valid {
		at := confirmedAt.Time.UTC()
		r.ConfirmedAt = &at
	}
	return r, nil
}
