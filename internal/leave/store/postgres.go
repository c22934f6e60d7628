package store

import (
	"context"
	"database/sql"
	"fmt"

	"presence/internal/leave/models"
)

// Postgres reads the annual_leave table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// List returns every booking, of any status, overlapping [from, to].
// Status filtering is the resolver's job.
func (s *Postgres) List(ctx context.Context, from, to string) ([]models.LeaveRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, person,
		       to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
		       status, reason, leave_type, days_taken::float8
		FROM annual_leave
		WHERE start_date <= $2::date AND end_date >= $1::date
		ORDER BY start_date, request_id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list leave: %w", err)
	}
	defer rows.Close()

	var out []models.LeaveRecord
	for rows.Next() {
		var r models.LeaveRecord
		var status string
		if err := rows.Scan(&r.RequestID, &r.Person, &r.StartDate, &r.EndDate,
			&status, &r.Reason, &r.LeaveType, &r.DaysTaken); err != nil {
			return nil, fmt.Errorf("scan leave: %w", err)
		}
		r.Status = models.Status(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leave: %w", err)
	}
	return out, nil
}

// Insert adds a booking and returns it with its request ID. Used for seeding.
func (s *Postgres) Insert(ctx context.Context, r models.LeaveRecord) (models.LeaveRecord, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO annual_leave (person, start_date, end_date, status, reason, leave_type, days_taken)
		VALUES ($1, $2::date, $3::date, $4, $5, $6, $7)
		RETURNING request_id
	`, r.Person, r.StartDate, r.EndDate, string(r.Status), r.Reason, r.LeaveType, r.DaysTaken).Scan(&r.RequestID)
	if err != nil {
		return models.LeaveRecord{}, fmt.Errorf("insert leave: %w", err)
	}
	return r, nil
}
