package models

import (
	"time"

	leavemodels "presence/internal/leave/models"
	rostermodels "presence/internal/roster/models"
	id "presence/pkg/domain"
)

// AttendanceRecord is the authoritative attendance for one person and week.
//
// Invariants:
//   - at most one record per (Initials.Key(), WeekStart)
//   - WeekStart is a Monday; WeekEnd is WeekStart + 6 days
//   - ConfirmedAt is set only by a successful save
//   - AttendanceDays is the comma-joined storage form of the day set
type AttendanceRecord struct {
	ID             id.RecordID `json:"serverId"`
	Initials       id.Initials `json:"personIdentifier"`
	DisplayName    string      `json:"displayName,omitempty"`
	Level          string      `json:"level,omitempty"`
	WeekStart      string      `json:"weekStart"`
	WeekEnd        string      `json:"weekEnd,omitempty"`
	ISOWeek        int         `json:"isoWeek,omitempty"`
	AttendanceDays string      `json:"attendanceDays"`
	ConfirmedAt    *time.Time  `json:"confirmedAt,omitempty"`
}

// SameSlot reports whether r and o address the same (person, week).
func (r AttendanceRecord) SameSlot(o AttendanceRecord) bool {
	return r.WeekStart == o.WeekStart && r.Initials.Key() == o.Initials.Key()
}

// SavePayload is one week's attendance sent to the persistence endpoint.
type SavePayload struct {
	DisplayName      string `json:"displayName"`
	PersonIdentifier string `json:"personIdentifier" validate:"required,max=10"`
	WeekStart        string `json:"weekStart" validate:"required,datetime=2006-01-02"`
	AttendanceDays   string `json:"attendanceDays" validate:"max=64"`
}

// Snapshot is the versioned input every resolver works from: roster, leave
// bookings and authoritative records for the tracked weeks.
type Snapshot struct {
	Version int64                     `json:"version"`
	Weeks   []string                  `json:"weeks"`
	Roster  rostermodels.Roster       `json:"roster"`
	Leave   []leavemodels.LeaveRecord `json:"leave"`
	Records []AttendanceRecord        `json:"records"`
}

// Find returns the record for (person, weekStart).
func Find(records []AttendanceRecord, person id.Initials, weekStart string) (AttendanceRecord, bool) {
	key := person.Key()
	for _, r := range records {
		if r.WeekStart == weekStart && r.Initials.Key() == key {
			return r, true
		}
	}
	return AttendanceRecord{}, false
}
