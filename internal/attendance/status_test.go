package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presence/internal/calendar"
	leavemodels "presence/internal/leave/models"
)

func TestResolveStatusWithoutLeave(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	sets := []string{"", "Monday", "Monday,Wednesday", "Tuesday,Thursday,Friday", "Mon,Tue,Wed,Thu,Fri", " wednesday "}

	for _, raw := range sets {
		parsed := ParseDaySet(raw)
		for _, day := range calendar.Workdays {
			date, ok := calendar.DateOf(monday, day)
			require.True(t, ok)

			got := ResolveStatus(raw, "AB", day, calendar.FormatDate(date), nil)
			want := StatusHome
			if parsed.Has(day) {
				want = StatusOffice
			}
			assert.Equal(t, want, got, "set %q day %s", raw, day)
			assert.NotEqual(t, StatusAway, got)
		}
	}
}

// Booked leave covering [s, s2] resolves every date in the range to away,
// even where the day is selected.
func TestResolveStatusLeaveWins(t *testing.T) {
	s := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	for span := 0; span < 12; span++ {
		s2 := s.AddDate(0, 0, span)
		records := []leavemodels.LeaveRecord{{
			Person: "ab", StartDate: calendar.FormatDate(s), EndDate: calendar.FormatDate(s2), Status: leavemodels.StatusBooked,
		}}
		for d := s; !d.After(s2); d = d.AddDate(0, 0, 1) {
			day := calendar.DayLabel(d)
			got := ResolveStatus("Monday,Tuesday,Wednesday,Thursday,Friday", "AB", day, calendar.FormatDate(d), records)
			require.Equal(t, StatusAway, got, "span %d date %s", span, calendar.FormatDate(d))
		}
	}
}

func TestScenarioB_LeaveOverridesSelectedDay(t *testing.T) {
	records := []leavemodels.LeaveRecord{{
		Person: "AB", StartDate: "2024-06-03", EndDate: "2024-06-07", Status: leavemodels.StatusBooked,
	}}
	assert.Equal(t, StatusAway, ResolveStatus("Monday,Wednesday", "AB", "Wednesday", "2024-06-05", records))
	assert.Equal(t, StatusOffice, ResolveStatus("Monday,Wednesday", "AB", "Monday", "2024-06-10", records))
}

func TestResolveStatusIgnoresNonBookedLeave(t *testing.T) {
	records := []leavemodels.LeaveRecord{{
		Person: "AB", StartDate: "2024-06-03", EndDate: "2024-06-07", Status: leavemodels.StatusApproved,
	}}
	assert.Equal(t, StatusOffice, ResolveStatus("Wednesday", "AB", "Wednesday", "2024-06-05", records))
	assert.Equal(t, StatusHome, ResolveStatus("", "AB", "Thursday", "2024-06-06", records))
}
