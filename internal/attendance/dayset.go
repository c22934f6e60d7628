package attendance

import (
	"strings"

	"presence/internal/calendar"
	dErrors "presence/pkg/domain-errors"
	pstrings "presence/pkg/platform/strings"
)

// DaySet is an ordered set of workdays. The zero value is the empty set.
// Its String form is the storage form: labels in week order joined by
// commas, e.g. "Monday,Wednesday".
type DaySet uint8

var dayAliases = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "weds": 2, "wednesday": 2,
	"thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
}

// CanonicalDay maps a label or abbreviation ("wed", " Wednesday") to its
// canonical label.
func CanonicalDay(label string) (string, bool) {
	i, ok := dayAliases[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return "", false
	}
	return calendar.Workdays[i], true
}

// ParseDaySet parses the storage form. Whitespace around entries is
// tolerated, repeats collapse, and unknown labels are dropped. An empty or
// blank string is the empty set.
func ParseDaySet(raw string) DaySet {
	var s DaySet
	for _, part := range pstrings.SplitList(raw) {
		if i, ok := dayAliases[strings.ToLower(part)]; ok {
			s |= 1 << i
		}
	}
	return s
}

// NewDaySet builds a set from labels, rejecting unknown ones.
func NewDaySet(labels ...string) (DaySet, error) {
	var s DaySet
	for _, l := range labels {
		next, err := s.With(l)
		if err != nil {
			return 0, err
		}
		s = next
	}
	return s, nil
}

func bit(label string) (DaySet, error) {
	i, ok := dayAliases[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, dErrors.New(dErrors.CodeValidation, "unknown day label "+strings.TrimSpace(label))
	}
	return 1 << i, nil
}

// Has reports membership. Unknown labels are never members.
func (s DaySet) Has(label string) bool {
	b, err := bit(label)
	return err == nil && s&b != 0
}

func (s DaySet) With(label string) (DaySet, error) {
	b, err := bit(label)
	if err != nil {
		return s, err
	}
	return s | b, nil
}

func (s DaySet) Without(label string) (DaySet, error) {
	b, err := bit(label)
	if err != nil {
		return s, err
	}
	return s &^ b, nil
}

// Toggle flips membership of label.
func (s DaySet) Toggle(label string) (DaySet, error) {
	b, err := bit(label)
	if err != nil {
		return s, err
	}
	return s ^ b, nil
}

func (s DaySet) IsEmpty() bool { return s == 0 }

func (s DaySet) Len() int {
	n := 0
	for v := s; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Labels returns the members in week order.
func (s DaySet) Labels() []string {
	out := make([]string, 0, s.Len())
	for i, d := range calendar.Workdays {
		if s&(1<<i) != 0 {
			out = append(out, d)
		}
	}
	return out
}

func (s DaySet) String() string {
	return strings.Join(s.Labels(), ",")
}

func (s DaySet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DaySet) UnmarshalText(b []byte) error {
	*s = ParseDaySet(string(b))
	return nil
}

// Canonical rewrites a stored value into the storage form.
func Canonical(raw string) string {
	return ParseDaySet(raw).String()
}

// ParseDaySetStrict parses the storage form like ParseDaySet but rejects
// unknown labels instead of dropping them. Used at the write boundary.
func ParseDaySetStrict(raw string) (DaySet, error) {
	return NewDaySet(pstrings.SplitList(raw)...)
}
