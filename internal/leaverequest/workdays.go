package leaverequest

import "time"

const backdateWorkingDayLimit = 5

// countWorkingDays counts Monday to Friday between start and end inclusive.
// Returns 0 when end is before start or the span holds only weekend days.
func countWorkingDays(start, end time.Time) int {
	start = truncateToDate(start)
	end = truncateToDate(end)
	if end.Before(start) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

// exceedsBackdateLimit reports whether start lies more than five working
// days before today. The day of the request itself does not count toward
// the gap.
func exceedsBackdateLimit(start, today time.Time) bool {
	start = truncateToDate(start)
	today = truncateToDate(today)
	if !start.Before(today) {
		return false
	}
	return countWorkingDays(start, today)-1 > backdateWorkingDayLimit
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
