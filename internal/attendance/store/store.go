// Package store persists authoritative attendance records.
package store

import (
	"context"

	"presence/internal/attendance/models"
)

// Store reads and writes attendance records. UpsertBatch writes every record
// or none and returns the stored rows in input order. An existing record for
// the same (person, week) keeps its ID.
type Store interface {
	ListByWeeks(ctx context.Context, weekStarts []string) ([]models.AttendanceRecord, error)
	UpsertBatch(ctx context.Context, records []models.AttendanceRecord) ([]models.AttendanceRecord, error)
}

func slotKey(personKey, weekStart string) string {
	return personKey + "|" + weekStart
}
