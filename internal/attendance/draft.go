package attendance

import (
	"maps"
	"slices"
	"strings"

	"presence/internal/attendance/models"
	rostermodels "presence/internal/roster/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

// Draft holds unsaved attendance selections: week start -> person key ->
// day set. A present empty cell ("no days chosen") is distinct from an
// absent one.
//
// Draft is not safe for concurrent use; workspace.Workspace guards it.
type Draft struct {
	weeks map[string]map[string]DaySet
}

func NewDraft() *Draft {
	return &Draft{weeks: map[string]map[string]DaySet{}}
}

// Seed replaces the draft with one cell per (roster member, week),
// defaulting to the empty set and overlaid with any authoritative record.
// Records for people outside the roster are seeded too so their saved
// values are never shadowed. Seeding twice with the same input yields the
// same draft.
func (d *Draft) Seed(records []models.AttendanceRecord, roster rostermodels.Roster, weekStarts []string) {
	d.weeks = make(map[string]map[string]DaySet, len(weekStarts))
	for _, w := range weekStarts {
		cells := make(map[string]DaySet, len(roster))
		for _, m := range roster {
			if m.Initials.IsNil() {
				continue
			}
			cells[m.Initials.Key()] = 0
		}
		d.weeks[w] = cells
	}
	for _, r := range records {
		cells, tracked := d.weeks[r.WeekStart]
		if !tracked || r.Initials.IsNil() {
			continue
		}
		cells[r.Initials.Key()] = ParseDaySet(strings.TrimSpace(r.AttendanceDays))
	}
}

// ToggleDay flips day in the cell for (weekStart, person), creating the
// cell when absent. Unknown day labels are rejected. Callers decide who may
// toggle whose row.
func (d *Draft) ToggleDay(weekStart string, person id.Initials, day string) error {
	if person.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "person is required")
	}
	cells, ok := d.weeks[weekStart]
	if !ok {
		cells = map[string]DaySet{}
		d.weeks[weekStart] = cells
	}
	next, err := cells[person.Key()].Toggle(day)
	if err != nil {
		return err
	}
	cells[person.Key()] = next
	return nil
}

// Set replaces the cell for (weekStart, person).
func (d *Draft) Set(weekStart string, person id.Initials, days DaySet) {
	cells, ok := d.weeks[weekStart]
	if !ok {
		cells = map[string]DaySet{}
		d.weeks[weekStart] = cells
	}
	cells[person.Key()] = days
}

// Cell returns the day set for (weekStart, person) and whether the cell exists.
func (d *Draft) Cell(weekStart string, person id.Initials) (DaySet, bool) {
	days, ok := d.weeks[weekStart][person.Key()]
	return days, ok
}

// Raw returns the storage form of the cell; "" when absent or empty.
func (d *Draft) Raw(weekStart string, person id.Initials) string {
	days, _ := d.Cell(weekStart, person)
	return days.String()
}

// Weeks returns the week starts held, sorted.
func (d *Draft) Weeks() []string {
	return slices.Sorted(maps.Keys(d.weeks))
}

// Len returns the number of cells.
func (d *Draft) Len() int {
	n := 0
	for _, cells := range d.weeks {
		n += len(cells)
	}
	return n
}

func (d *Draft) Clone() *Draft {
	out := &Draft{weeks: make(map[string]map[string]DaySet, len(d.weeks))}
	for w, cells := range d.weeks {
		out.weeks[w] = maps.Clone(cells)
	}
	return out
}

// Equal reports whether both drafts hold the same cells with the same sets.
func (d *Draft) Equal(o *Draft) bool {
	return maps.EqualFunc(d.weeks, o.weeks, func(a, b map[string]DaySet) bool {
		return maps.Equal(a, b)
	})
}
