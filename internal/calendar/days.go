package calendar

import "time"

// Workdays are the labels an attendance set may contain, in week order.
var Workdays = [5]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DayLabel returns the English weekday name of t ("Monday", "Saturday", ...).
func DayLabel(t time.Time) string {
	return t.Weekday().String()
}

// WorkdayIndex returns the position of label in Workdays, or -1.
func WorkdayIndex(label string) int {
	for i, d := range Workdays {
		if d == label {
			return i
		}
	}
	return -1
}

// DateOf returns the date of the workday label within the week starting at
// monday. ok is false for labels outside Monday..Friday.
func DateOf(monday time.Time, label string) (date time.Time, ok bool) {
	i := WorkdayIndex(label)
	if i < 0 {
		return time.Time{}, false
	}
	return WeekRange(monday).Start.AddDate(0, 0, i), true
}

// WorkdayKeys returns label -> YYYY-MM-DD for each workday of the week.
func WorkdayKeys(week Range) map[string]string {
	keys := make(map[string]string, len(Workdays))
	for i, d := range Workdays {
		keys[d] = FormatDate(week.Start.AddDate(0, 0, i))
	}
	return keys
}
