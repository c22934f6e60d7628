package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"presence/internal/leave/models"
)

type LeaveStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestLeaveStoreSuite(t *testing.T) {
	suite.Run(t, new(LeaveStoreSuite))
}

func (s *LeaveStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory(
		models.LeaveRecord{Person: "AB", StartDate: "2024-06-03", EndDate: "2024-06-07", Status: models.StatusBooked},
		models.LeaveRecord{Person: "CD", StartDate: "2024-07-01", EndDate: "2024-07-02", Status: models.StatusRequested},
	)
}

func (s *LeaveStoreSuite) TestAssignsRequestIDs() {
	added := s.store.Add(models.LeaveRecord{Person: "EF", StartDate: "2024-06-10", EndDate: "2024-06-10"})
	s.EqualValues(3, added.RequestID)

	kept := s.store.Add(models.LeaveRecord{RequestID: 99, Person: "EF", StartDate: "2024-06-11", EndDate: "2024-06-11"})
	s.EqualValues(99, kept.RequestID)
}

func (s *LeaveStoreSuite) TestListFiltersByWindow() {
	s.Run("overlapping start", func() {
		got, err := s.store.List(s.ctx, "2024-06-07", "2024-06-14")
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("AB", got[0].Person)
	})

	s.Run("returns every status", func() {
		got, err := s.store.List(s.ctx, "2024-06-01", "2024-07-31")
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("empty window", func() {
		got, err := s.store.List(s.ctx, "2024-08-01", "2024-08-31")
		s.Require().NoError(err)
		s.Empty(got)
	})
}
