package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"presence/internal/attendance/models"
	rostermodels "presence/internal/roster/models"
	dErrors "presence/pkg/domain-errors"
)

const (
	thisWeek = "2024-06-03"
	nextWeek = "2024-06-10"
)

var team = rostermodels.Roster{
	{Initials: "AB", DisplayName: "Alex Brown"},
	{Initials: "CD", DisplayName: "Casey Doyle"},
}

type DraftSuite struct {
	suite.Suite
	draft *Draft
}

func TestDraftSuite(t *testing.T) {
	suite.Run(t, new(DraftSuite))
}

func (s *DraftSuite) SetupTest() {
	s.draft = NewDraft()
}

func (s *DraftSuite) TestSeedCoversEveryMemberAndWeek() {
	s.draft.Seed(nil, team, []string{thisWeek, nextWeek})

	s.Equal(4, s.draft.Len())
	for _, w := range []string{thisWeek, nextWeek} {
		for _, m := range team {
			days, ok := s.draft.Cell(w, m.Initials)
			s.True(ok, "cell %s/%s", w, m.Initials)
			s.True(days.IsEmpty())
		}
	}
	s.Equal([]string{thisWeek, nextWeek}, s.draft.Weeks())
}

func (s *DraftSuite) TestSeedOverlaysAuthoritativeValues() {
	records := []models.AttendanceRecord{
		{Initials: "ab", WeekStart: thisWeek, AttendanceDays: " Wednesday,Monday "},
		{Initials: "CD", WeekStart: "2024-05-27", AttendanceDays: "Friday"}, // untracked week
	}
	s.draft.Seed(records, team, []string{thisWeek, nextWeek})

	s.Equal("Monday,Wednesday", s.draft.Raw(thisWeek, "AB"))
	s.Equal("", s.draft.Raw(nextWeek, "AB"))
	_, ok := s.draft.Cell("2024-05-27", "CD")
	s.False(ok)
}

func (s *DraftSuite) TestSeedIsIdempotentAndReplaces() {
	records := []models.AttendanceRecord{{Initials: "AB", WeekStart: thisWeek, AttendanceDays: "Tuesday"}}
	s.draft.Seed(records, team, []string{thisWeek})
	first := s.draft.Clone()

	s.Require().NoError(s.draft.ToggleDay(thisWeek, "CD", "Friday"))
	s.draft.Seed(records, team, []string{thisWeek})
	s.True(first.Equal(s.draft), "reseed discards edits and matches the first seed")

	s.draft.Seed(records, team, []string{thisWeek})
	s.True(first.Equal(s.draft))
}

func (s *DraftSuite) TestSeedWithPartialRoster() {
	s.draft.Seed(nil, nil, []string{thisWeek})
	s.Equal(0, s.draft.Len())
	s.Equal("", s.draft.Raw(thisWeek, "AB"))
}

func (s *DraftSuite) TestToggleRoundTrip() {
	records := []models.AttendanceRecord{{Initials: "AB", WeekStart: thisWeek, AttendanceDays: "Monday,Thursday"}}
	s.draft.Seed(records, team, []string{thisWeek})
	before := ParseDaySet(s.draft.Raw(thisWeek, "AB"))

	for _, day := range []string{"Wednesday", "Monday"} {
		s.Require().NoError(s.draft.ToggleDay(thisWeek, "AB", day))
		s.Require().NoError(s.draft.ToggleDay(thisWeek, "AB", day))
		after, _ := s.draft.Cell(thisWeek, "AB")
		s.Equal(before, after, "toggling %s twice", day)
	}
	s.Equal("Monday,Thursday", s.draft.Raw(thisWeek, "AB"))
}

func (s *DraftSuite) TestToggleNeverDuplicates() {
	s.draft.Seed(nil, team, []string{thisWeek})
	s.Require().NoError(s.draft.ToggleDay(thisWeek, "AB", "Monday"))
	s.Require().NoError(s.draft.ToggleDay(thisWeek, "ab", "Wednesday"))
	s.Require().NoError(s.draft.ToggleDay(thisWeek, "AB", "wed"))
	s.Require().NoError(s.draft.ToggleDay(thisWeek, "AB", "Wednesday"))
	s.Equal("Monday,Wednesday", s.draft.Raw(thisWeek, "AB"))
}

func (s *DraftSuite) TestToggleRejectsBadInput() {
	s.draft.Seed(nil, team, []string{thisWeek})
	before := s.draft.Clone()

	err := s.draft.ToggleDay(thisWeek, "AB", "Saturday")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	err = s.draft.ToggleDay(thisWeek, "", "Monday")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.True(before.Equal(s.draft))
}

func (s *DraftSuite) TestCloneIsIndependent() {
	s.draft.Seed(nil, team, []string{thisWeek})
	clone := s.draft.Clone()
	s.Require().NoError(clone.ToggleDay(thisWeek, "AB", "Friday"))
	s.Equal("", s.draft.Raw(thisWeek, "AB"))
	s.False(clone.Equal(s.draft))
}

func TestDraftSet(t *testing.T) {
	d := NewDraft()
	d.Set(thisWeek, "AB", ParseDaySet("Friday,Monday"))
	require.Equal(t, "Monday,Friday", d.Raw(thisWeek, "ab"))
	assert.Equal(t, 1, d.Len())
}
