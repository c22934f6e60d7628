package store

import (
	"context"
	"sync"

	"presence/internal/leave"
	"presence/internal/leave/models"
)

// InMemory is a leave source for tests and local runs without a database.
type InMemory struct {
	mu      sync.RWMutex
	records []models.LeaveRecord
	nextID  int64
}

func NewInMemory(records ...models.LeaveRecord) *InMemory {
	s := &InMemory{}
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// Add stores r, assigning a request ID when it has none.
func (s *InMemory) Add(r models.LeaveRecord) models.LeaveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	if r.RequestID == 0 {
		r.RequestID = s.nextID
	}
	s.records = append(s.records, r)
	return r
}

func (s *InMemory) List(_ context.Context, from, to string) ([]models.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return leave.Overlapping(s.records, from, to), nil
}
