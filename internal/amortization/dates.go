package amortization

import "time"

// AddMonths advances t by n calendar months, capping the day of month to the
// last valid day of the target month (Jan 31 + 1 month = Feb 28 or 29).
// time.AddDate would instead overflow into the following month.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// Normalize on the first of the month so AddDate cannot overflow
	first := time.Date(year, month, 1, hour, min, sec, t.Nanosecond(), t.Location()).AddDate(0, n, 0)

	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// TruncateDate drops the clock, keeping the calendar date and location
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
