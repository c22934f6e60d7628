package calendar

import "time"

// DefaultCutoff is the office close used when no cutoff is configured.
const DefaultCutoff = 17*time.Hour + 30*time.Minute

// TargetDay returns the working day a "who is in" view should report on.
// At or after cutoff the next day is targeted, and weekends roll forward to
// Monday. The result is midnight in loc.
func TargetDay(now time.Time, loc *time.Location, cutoff time.Duration) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	if now.Sub(day) >= cutoff {
		day = day.AddDate(0, 0, 1)
	}
	switch day.Weekday() {
	case time.Saturday:
		day = day.AddDate(0, 0, 2)
	case time.Sunday:
		day = day.AddDate(0, 0, 1)
	}
	return day
}
