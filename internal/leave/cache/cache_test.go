package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"presence/internal/leave/models"
	"presence/pkg/platform/sentinel"
)

type countingSource struct {
	calls   int
	records []models.LeaveRecord
	err     error
}

func (s *countingSource) List(context.Context, string, string) ([]models.LeaveRecord, error) {
	s.calls++
	return s.records, s.err
}

type memStore struct {
	mu      sync.Mutex
	entries map[string][]models.LeaveRecord
	getErr  error
	setErr  error
}

func (m *memStore) Get(_ context.Context, key string) ([]models.LeaveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.entries[key]
	if !ok {
		return nil, sentinel.ErrCacheMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, records []models.LeaveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = records
	return nil
}

func (m *memStore) DeletePrefix(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string][]models.LeaveRecord{}
	return nil
}

type CachedLeaveSuite struct {
	suite.Suite
	source *countingSource
	store  *memStore
	cached *Cached
	ctx    context.Context
}

func TestCachedLeaveSuite(t *testing.T) {
	suite.Run(t, new(CachedLeaveSuite))
}

func (s *CachedLeaveSuite) SetupTest() {
	s.ctx = context.Background()
	s.source = &countingSource{records: []models.LeaveRecord{
		{Person: "AB", StartDate: "2024-06-03", EndDate: "2024-06-07", Status: models.StatusBooked},
	}}
	s.store = &memStore{entries: map[string][]models.LeaveRecord{}}
	s.cached = New(s.source, s.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *CachedLeaveSuite) TestReadThrough() {
	first, err := s.cached.List(s.ctx, "2024-06-03", "2024-06-16")
	s.Require().NoError(err)
	second, err := s.cached.List(s.ctx, "2024-06-03", "2024-06-16")
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, s.source.calls)
}

func (s *CachedLeaveSuite) TestWindowsAreSeparate() {
	_, _ = s.cached.List(s.ctx, "2024-06-03", "2024-06-16")
	_, _ = s.cached.List(s.ctx, "2024-06-10", "2024-06-23")
	s.Equal(2, s.source.calls)
}

func (s *CachedLeaveSuite) TestCacheOutageFallsBackToSource() {
	s.store.getErr = errors.Join(errors.New("dial tcp"), sentinel.ErrUnavailable)
	s.store.setErr = errors.New("dial tcp")

	got, err := s.cached.List(s.ctx, "2024-06-03", "2024-06-16")
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *CachedLeaveSuite) TestSourceErrorPropagates() {
	s.source.err = errors.New("db down")
	_, err := s.cached.List(s.ctx, "2024-06-03", "2024-06-16")
	s.Error(err)
	s.Empty(s.store.entries)
}

func (s *CachedLeaveSuite) TestWarmReplacesAndInvalidateClears() {
	_, _ = s.cached.List(s.ctx, "2024-06-03", "2024-06-16")
	s.source.records = nil

	s.Require().NoError(s.cached.Warm(s.ctx, "2024-06-03", "2024-06-16"))
	got, err := s.cached.List(s.ctx, "2024-06-03", "2024-06-16")
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
	s.Equal(2, s.source.calls)

	s.Require().NoError(s.cached.Invalidate(s.ctx))
	_, _ = s.cached.List(s.ctx, "2024-06-03", "2024-06-16")
	s.Equal(3, s.source.calls)
}
