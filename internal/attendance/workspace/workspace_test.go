package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"presence/internal/attendance"
	"presence/internal/attendance/models"
	leavemodels "presence/internal/leave/models"
	rostermodels "presence/internal/roster/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

const (
	thisWeek = "2024-06-03"
	nextWeek = "2024-06-10"
)

// fakeBackend confirms payloads like the server does. When gate is set,
// Submit blocks until it is closed.
type fakeBackend struct {
	mu        sync.Mutex
	snapshot  models.Snapshot
	submitErr error
	submitted [][]models.SavePayload
	entered   chan struct{}
	gate      chan struct{}
}

func (b *fakeBackend) Snapshot(context.Context, []string) (models.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := b.snapshot
	snap.Records = append([]models.AttendanceRecord(nil), b.snapshot.Records...)
	return snap, nil
}

func (b *fakeBackend) Submit(_ context.Context, payloads []models.SavePayload) ([]models.AttendanceRecord, error) {
	b.mu.Lock()
	b.submitted = append(b.submitted, payloads)
	entered, gate, err := b.entered, b.gate, b.submitErr
	b.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	at := time.Date(2024, 6, 4, 9, 30, 0, 0, time.UTC)
	out := make([]models.AttendanceRecord, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, models.AttendanceRecord{
			ID: id.NewRecordID(), Initials: id.Initials(p.PersonIdentifier),
			WeekStart: p.WeekStart, AttendanceDays: attendance.Canonical(p.AttendanceDays), ConfirmedAt: &at,
		})
	}
	return out, nil
}

func (b *fakeBackend) setRecords(records ...models.AttendanceRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot.Records = records
}

type WorkspaceSuite struct {
	suite.Suite
	ctx     context.Context
	backend *fakeBackend
	ws      *Workspace
}

func TestWorkspaceSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceSuite))
}

func (s *WorkspaceSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = &fakeBackend{snapshot: models.Snapshot{
		Version: 42,
		Weeks:   []string{thisWeek, nextWeek},
		Roster: rostermodels.Roster{
			{Initials: "AB", DisplayName: "Ada Byron"},
			{Initials: "CD", DisplayName: "Cy Dunn"},
		},
		Leave: []leavemodels.LeaveRecord{
			{Person: "AB", StartDate: "2024-06-05", EndDate: "2024-06-05", Status: leavemodels.StatusBooked},
		},
	}}
	ws, err := Open(s.ctx, s.backend, "AB", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.ws = ws
}

func (s *WorkspaceSuite) TestOpenRequiresPerson() {
	_, err := Open(s.ctx, s.backend, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *WorkspaceSuite) TestFirstSaveClearsUnsavedChanges() {
	s.True(s.ws.HasUnsavedChanges(), "no records yet")
	s.Equal([]string{thisWeek, nextWeek}, s.ws.UnsavedWeeks())

	s.Require().NoError(s.ws.ToggleDay(thisWeek, "Monday"))
	s.Require().NoError(s.ws.ToggleDay(thisWeek, "wed"))
	before := s.ws.Version()
	serverVersion := s.ws.Snapshot().Version

	confirmed, err := s.ws.Save(s.ctx)
	s.Require().NoError(err)
	s.Len(confirmed, 2)
	s.Require().Len(s.backend.submitted, 1, "one batched request")
	s.Equal("Monday,Wednesday", s.backend.submitted[0][0].AttendanceDays)
	s.Equal("Ada Byron", s.backend.submitted[0][0].DisplayName)

	s.False(s.ws.HasUnsavedChanges())
	s.Greater(s.ws.Version(), before)
	s.Equal(int64(42), serverVersion)
	s.Equal(serverVersion, s.ws.Snapshot().Version, "server version only changes on reload")
	s.Equal([]string{"Monday", "Wednesday"}, s.ws.Days("AB", thisWeek))

	again, err := s.ws.Save(s.ctx)
	s.NoError(err)
	s.Nil(again, "nothing to save")
	s.Len(s.backend.submitted, 1)
}

func (s *WorkspaceSuite) TestFailedSaveLeavesDraftUntouched() {
	s.Require().NoError(s.ws.ToggleDay(thisWeek, "Friday"))
	s.backend.submitErr = dErrors.New(dErrors.CodeUnavailable, "connection refused")
	before := s.ws.draft.Clone()
	version := s.ws.Version()

	_, err := s.ws.Save(s.ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	s.True(s.ws.draft.Equal(before))
	s.True(s.ws.HasUnsavedChanges())
	s.Equal(version, s.ws.Version())
	s.False(s.ws.IsSaving())
}

func (s *WorkspaceSuite) TestSaveGuard() {
	s.backend.entered = make(chan struct{})
	s.backend.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.ws.Save(s.ctx)
		done <- err
	}()
	<-s.backend.entered

	s.True(s.ws.IsSaving())
	_, err := s.ws.Save(s.ctx)
	s.ErrorIs(err, ErrSaveInProgress)
	s.ErrorIs(s.ws.ToggleDay(thisWeek, "Monday"), ErrSaveInProgress)
	s.ErrorIs(s.ws.Reload(s.ctx), ErrSaveInProgress)

	close(s.backend.gate)
	s.NoError(<-done)
	s.False(s.ws.HasUnsavedChanges())
	s.Len(s.backend.submitted, 1)
}

func (s *WorkspaceSuite) TestCloseDiscardsInFlightResult() {
	s.backend.entered = make(chan struct{})
	s.backend.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.ws.Save(s.ctx)
		done <- err
	}()
	<-s.backend.entered
	s.ws.Close()
	close(s.backend.gate)

	s.ErrorIs(<-done, ErrClosed)
	s.Empty(s.ws.Snapshot().Records)
	s.ErrorIs(s.ws.ToggleDay(thisWeek, "Monday"), ErrClosed)
}

func (s *WorkspaceSuite) TestToggleRejectsUntrackedWeek() {
	err := s.ws.ToggleDay("2024-06-17", "Monday")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.True(dErrors.HasCode(s.ws.ToggleDay(thisWeek, "Caturday"), dErrors.CodeValidation))
}

func (s *WorkspaceSuite) TestStatusUsesDraftAndLeave() {
	s.Require().NoError(s.ws.ToggleDay(thisWeek, "Monday"))
	s.Require().NoError(s.ws.ToggleDay(thisWeek, "Wednesday"))

	s.Equal(attendance.StatusOffice, s.ws.Status("AB", "Monday", thisWeek))
	s.Equal(attendance.StatusHome, s.ws.Status("AB", "Tuesday", thisWeek))
	s.Equal(attendance.StatusAway, s.ws.Status("ab", "wed", thisWeek), "leave wins")
	s.Equal(attendance.StatusHome, s.ws.Status("CD", "Monday", thisWeek))
}

func (s *WorkspaceSuite) TestReloadCarriesOwnEdits() {
	at := time.Date(2024, 6, 4, 8, 0, 0, 0, time.UTC)
	s.Require().NoError(s.ws.ToggleDay(thisWeek, "Thursday"))
	s.backend.setRecords(
		models.AttendanceRecord{Initials: "AB", WeekStart: nextWeek, AttendanceDays: "Friday", ConfirmedAt: &at},
		models.AttendanceRecord{Initials: "CD", WeekStart: thisWeek, AttendanceDays: "Monday", ConfirmedAt: &at},
	)
	before := s.ws.Version()

	s.Require().NoError(s.ws.Reload(s.ctx))
	s.Greater(s.ws.Version(), before)
	s.Equal([]string{"Thursday"}, s.ws.Days("AB", thisWeek), "edited week carried")
	s.Equal([]string{"Friday"}, s.ws.Days("AB", nextWeek), "untouched week takes server value")
	s.Equal([]string{"Monday"}, s.ws.Days("CD", thisWeek))
	s.Equal([]string{thisWeek}, s.ws.UnsavedWeeks())
}

func (s *WorkspaceSuite) TestReloadAfterClose() {
	s.ws.Close()
	s.ErrorIs(s.ws.Reload(s.ctx), ErrClosed)
	_, err := s.ws.Save(s.ctx)
	s.True(errors.Is(err, ErrClosed))
}
