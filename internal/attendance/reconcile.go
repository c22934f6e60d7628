package attendance

import (
	"presence/internal/attendance/models"
	id "presence/pkg/domain"
)

// differs reports whether the draft cell for (week, person) needs saving.
// A week with no authoritative record always does, even when the draft is
// empty: attendance must be confirmed explicitly.
func differs(draft *Draft, records []models.AttendanceRecord, person id.Initials, week string) bool {
	rec, ok := models.Find(records, person, week)
	if !ok {
		return true
	}
	return Canonical(rec.AttendanceDays) != draft.Raw(week, person)
}

// HasUnsavedChanges reports whether any tracked week of person differs from
// the authoritative records. It is pure; recompute it whenever either input
// changes.
func HasUnsavedChanges(draft *Draft, records []models.AttendanceRecord, person id.Initials, trackedWeeks []string) bool {
	return len(UnsavedWeeks(draft, records, person, trackedWeeks)) > 0
}

// UnsavedWeeks returns the tracked weeks of person that need saving, in order.
func UnsavedWeeks(draft *Draft, records []models.AttendanceRecord, person id.Initials, trackedWeeks []string) []string {
	if person.IsNil() {
		return nil
	}
	var out []string
	for _, w := range trackedWeeks {
		if differs(draft, records, person, w) {
			out = append(out, w)
		}
	}
	return out
}

// BuildPayloads returns one payload per tracked week that needs saving. An
// empty result means there is nothing to send.
func BuildPayloads(
	draft *Draft,
	records []models.AttendanceRecord,
	person id.Initials,
	trackedWeeks []string,
	displayName func(id.Initials) string,
) []models.SavePayload {
	weeks := UnsavedWeeks(draft, records, person, trackedWeeks)
	if len(weeks) == 0 {
		return nil
	}
	name := person.String()
	if displayName != nil {
		name = displayName(person)
	}
	payloads := make([]models.SavePayload, 0, len(weeks))
	for _, w := range weeks {
		payloads = append(payloads, models.SavePayload{
			DisplayName:      name,
			PersonIdentifier: person.String(),
			WeekStart:        w,
			AttendanceDays:   draft.Raw(w, person),
		})
	}
	return payloads
}

// Merge folds confirmed records into records. A confirmed record replaces
// the one for the same (person, week) or is appended; every other record is
// kept as is. records is not modified.
func Merge(records, confirmed []models.AttendanceRecord) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, len(records), len(records)+len(confirmed))
	copy(out, records)
	for _, c := range confirmed {
		replaced := false
		for i := range out {
			if out[i].SameSlot(c) {
				out[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, c)
		}
	}
	return out
}
