package store

import (
	"context"
	"database/sql"
	"fmt"

	"presence/internal/roster/models"
	id "presence/pkg/domain"
)

// Postgres reads the team table. Inactive members are excluded.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Members(ctx context.Context) (models.Roster, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT initials, full_name, first_name, level
		FROM team
		WHERE status <> 'inactive'
		ORDER BY full_name, initials
	`)
	if err != nil {
		return nil, fmt.Errorf("list team: %w", err)
	}
	defer rows.Close()

	roster := models.Roster{}
	for rows.Next() {
		var m models.TeamMember
		var initials string
		if err := rows.Scan(&initials, &m.DisplayName, &m.FirstName, &m.Level); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		parsed, err := id.ParseInitials(initials)
		if err != nil {
			// rows with unusable identifiers cannot own attendance
			continue
		}
		m.Initials = parsed
		roster = append(roster, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team: %w", err)
	}
	return roster, nil
}

// Upsert inserts or updates a member as active. Used for seeding.
func (s *Postgres) Upsert(ctx context.Context, m models.TeamMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team (initials, full_name, first_name, level, status)
		VALUES ($1, $2, $3, $4, 'active')
		ON CONFLICT (initials) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    first_name = EXCLUDED.first_name,
		    level = EXCLUDED.level,
		    status = 'active'
	`, m.Initials.String(), m.DisplayName, m.FirstName, m.Level)
	if err != nil {
		return fmt.Errorf("upsert team member: %w", err)
	}
	return nil
}

// Deactivate marks a member inactive.
func (s *Postgres) Deactivate(ctx context.Context, initials id.Initials) error {
	_, err := s.db.ExecContext(ctx, `UPDATE team SET status = 'inactive' WHERE lower(initials) = $1`, initials.Key())
	if err != nil {
		return fmt.Errorf("deactivate team member: %w", err)
	}
	return nil
}
