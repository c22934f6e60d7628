// Package leave answers "is this person on booked leave on this date" over a
// snapshot of leave records. Records come from an external collaborator and
// are only partially trusted: malformed ones are skipped, never reported.
package leave

import (
	"context"

	"presence/internal/leave/models"
	id "presence/pkg/domain"
)

// Source reads leave bookings overlapping the inclusive [from, to] date keys.
type Source interface {
	List(ctx context.Context, from, to string) ([]models.LeaveRecord, error)
}

// IsOnLeave reports whether a booked, well-formed record for person covers
// date. Bounds are inclusive and compared as YYYY-MM-DD strings.
func IsOnLeave(records []models.LeaveRecord, person id.Initials, date string) bool {
	key := person.Key()
	if key == "" {
		return false
	}
	for _, r := range records {
		if !r.IsBooked() || !r.WellFormed() {
			continue
		}
		if id.NormalizeInitials(r.Person) != key {
			continue
		}
		if r.StartDate <= date && date <= r.EndDate {
			return true
		}
	}
	return false
}

// ForPerson returns the records belonging to person, in input order.
func ForPerson(records []models.LeaveRecord, person id.Initials) []models.LeaveRecord {
	var out []models.LeaveRecord
	for _, r := range records {
		if person.Matches(r.Person) {
			out = append(out, r)
		}
	}
	return out
}

// Index groups booked, well-formed records by normalized person key so a
// board of n people does not rescan every record per cell.
type Index map[string][]models.LeaveRecord

func NewIndex(records []models.LeaveRecord) Index {
	idx := make(Index)
	for _, r := range records {
		if !r.IsBooked() || !r.WellFormed() {
			continue
		}
		key := id.NormalizeInitials(r.Person)
		idx[key] = append(idx[key], r)
	}
	return idx
}

// For returns the records for person.
func (idx Index) For(person id.Initials) []models.LeaveRecord {
	return idx[person.Key()]
}

// Overlapping returns the records that intersect [from, to].
func Overlapping(records []models.LeaveRecord, from, to string) []models.LeaveRecord {
	var out []models.LeaveRecord
	for _, r := range records {
		if r.StartDate <= to && from <= r.EndDate {
			out = append(out, r)
		}
	}
	return out
}
