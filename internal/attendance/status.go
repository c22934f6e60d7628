package attendance

import (
	"presence/internal/leave"
	leavemodels "presence/internal/leave/models"
	id "presence/pkg/domain"
)

// Status is where a person is on a given day.
type Status string

const (
	StatusOffice Status = "office"
	StatusHome   Status = "home"
	StatusAway   Status = "away"
)

func (s Status) String() string { return string(s) }

// ResolveStatus decides a person's status for one day. Booked leave always
// wins; otherwise the day's presence in the attendance set means office,
// and anything else means home. There is no unknown status.
func ResolveStatus(attendanceDaysRaw string, person id.Initials, dayLabel, date string, records []leavemodels.LeaveRecord) Status {
	if leave.IsOnLeave(records, person, date) {
		return StatusAway
	}
	if ParseDaySet(attendanceDaysRaw).Has(dayLabel) {
		return StatusOffice
	}
	return StatusHome
}
