package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"presence/internal/attendance/models"
)

// InMemory keeps records keyed by (person, week).
type InMemory struct {
	mu      sync.RWMutex
	records map[string]models.AttendanceRecord
}

func NewInMemory(records ...models.AttendanceRecord) *InMemory {
	s := &InMemory{records: make(map[string]models.AttendanceRecord, len(records))}
	for _, r := range records {
		s.records[slotKey(r.Initials.Key(), r.WeekStart)] = r
	}
	return s
}

func (s *InMemory) ListByWeeks(_ context.Context, weekStarts []string) ([]models.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AttendanceRecord
	for _, r := range s.records {
		if slices.Contains(weekStarts, r.WeekStart) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekStart != out[j].WeekStart {
			return out[i].WeekStart < out[j].WeekStart
		}
		return out[i].Initials.Key() < out[j].Initials.Key()
	})
	return out, nil
}

func (s *InMemory) UpsertBatch(_ context.Context, records []models.AttendanceRecord) ([]models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		key := slotKey(r.Initials.Key(), r.WeekStart)
		if existing, ok := s.records[key]; ok {
			r.ID = existing.ID
		}
		s.records[key] = r
		out = append(out, r)
	}
	return out, nil
}
