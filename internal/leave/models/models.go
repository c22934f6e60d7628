package models

import (
	"strings"

	"presence/internal/calendar"
)

// Status is the workflow state of a leave request. Only StatusBooked counts
// as an absence.
type Status string

const (
	StatusRequested    Status = "requested"
	StatusApproved     Status = "approved"
	StatusBooked       Status = "booked"
	StatusRejected     Status = "rejected"
	StatusAcknowledged Status = "acknowledged"
	StatusDiscarded    Status = "discarded"
)

// LeaveRecord is a leave booking as read from the leave collaborator.
// StartDate and EndDate are inclusive YYYY-MM-DD keys.
type LeaveRecord struct {
	RequestID int64   `json:"requestId"`
	Person    string  `json:"person"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Status    Status  `json:"status"`
	Reason    string  `json:"reason,omitempty"`
	LeaveType string  `json:"leaveType,omitempty"`
	DaysTaken float64 `json:"daysTaken,omitempty"`
}

// IsBooked reports whether the record counts as an absence.
func (r LeaveRecord) IsBooked() bool {
	return r.Status == StatusBooked
}

// WellFormed reports whether the record can take part in overlap checks:
// a person, two valid dates and start not after end.
func (r LeaveRecord) WellFormed() bool {
	if strings.TrimSpace(r.Person) == "" {
		return false
	}
	if !calendar.IsDateKey(r.StartDate) || !calendar.IsDateKey(r.EndDate) {
		return false
	}
	return r.StartDate <= r.EndDate
}
