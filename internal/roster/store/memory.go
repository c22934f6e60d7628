package store

import (
	"context"
	"sync"

	"presence/internal/roster/models"
)

// InMemory is a fixed roster for tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	members models.Roster
}

func NewInMemory(members ...models.TeamMember) *InMemory {
	return &InMemory{members: append(models.Roster(nil), members...)}
}

func (s *InMemory) Replace(members models.Roster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(models.Roster(nil), members...)
}

func (s *InMemory) Members(context.Context) (models.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(models.Roster(nil), s.members...), nil
}
