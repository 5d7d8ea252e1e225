package core

import "time"

const (
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeYear  DateRange = "year"
)

// DateRange selects the aggregation window for summaries.
type DateRange string

// ParseDateRange maps a query value to a DateRange. Anything unrecognized,
// including the empty string, resolves to RangeToday.
func ParseDateRange(s string) DateRange {
	switch DateRange(s) {
	case RangeToday, RangeWeek, RangeMonth, RangeYear:
		return DateRange(s)
	}
	return RangeToday
}

// Resolve returns the [start, end] bounds for the range at the current time.
func (r DateRange) Resolve() (time.Time, time.Time) {
	return r.ResolveAt(time.Now())
}

// ResolveAt returns the bounds for the range as seen from now.
//
// Today is closed on both ends: start of day through the last instant of the
// same day. Week, month and year are open-ended forward: the period start
// through now itself. Weeks start on Sunday.
func (r DateRange) ResolveAt(now time.Time) (start, end time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch r {
	case RangeWeek:
		return day.AddDate(0, 0, -int(now.Weekday())), now
	case RangeMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	case RangeYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), now
	default:
		return day, day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
}
