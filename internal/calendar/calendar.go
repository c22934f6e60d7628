// Package calendar computes Monday-aligned office weeks and the date keys
// used everywhere attendance is stored or compared.
//
// All functions are total. Dates are calendar dates in the location of their
// input; keys use the fixed "2006-01-02" layout so string comparison matches
// date order.
package calendar

import "time"

// DateLayout is the wire and storage layout for calendar dates.
const DateLayout = "2006-01-02"

// Range is an inclusive Monday..Sunday week.
type Range struct {
	Start time.Time
	End   time.Time
}

// MondayOf returns Monday 00:00 of the ISO week containing t, in t's location.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekRange returns the week starting at monday. End is start + 6 days.
func WeekRange(monday time.Time) Range {
	y, m, d := monday.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, monday.Location())
	return Range{Start: start, End: start.AddDate(0, 0, 6)}
}

func (r Range) StartKey() string { return FormatDate(r.Start) }
func (r Range) EndKey() string   { return FormatDate(r.End) }
func (r Range) ISOWeek() int     { return ISOWeek(r.Start) }

// Contains reports whether the date key falls inside the range.
func (r Range) Contains(dateKey string) bool {
	return r.StartKey() <= dateKey && dateKey <= r.EndKey()
}

// Next returns the following week.
func (r Range) Next() Range {
	return WeekRange(r.Start.AddDate(0, 0, 7))
}

// ISOWeek returns the ISO-8601 week number of t.
func ISOWeek(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD key as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// IsDateKey reports whether s is a well-formed YYYY-MM-DD date.
func IsDateKey(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// CurrentAndNext returns the week containing now and the week after it.
func CurrentAndNext(now time.Time) []Range {
	current := WeekRange(MondayOf(now))
	return []Range{current, current.Next()}
}

// StartKeys returns the start keys of the given weeks, in order.
func StartKeys(weeks []Range) []string {
	keys := make([]string, len(weeks))
	for i, w := range weeks {
		keys[i] = w.StartKey()
	}
	return keys
}
