package domain

import "time"

// NamedRange is a user-facing date range token.
type NamedRange string

const (
	RangeAll       NamedRange = "all"
	RangeThisYear  NamedRange = "thisYear"
	RangeThisMonth NamedRange = "thisMonth"
	RangeThisWeek  NamedRange = "thisWeek"
	RangeLastMonth NamedRange = "lastMonth"
	RangeCustom    NamedRange = "custom"
)

// ResolveRange maps a named range to concrete day bounds relative to today.
// today is injected so resolution is deterministic under test. Weeks start
// on Monday; "lastMonth" spans the whole previous calendar month. For
// RangeAll and RangeCustom the caller-supplied bounds are returned verbatim
// (nil meaning unbounded).
//
// Returned bounds are normalized to start-of-day and end-of-day.
func ResolveRange(r NamedRange, today time.Time, customStart, customEnd *time.Time) (start, end *time.Time) {
	switch r {
	case RangeThisYear:
		s := StartOfDay(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()))
		e := EndOfDay(today)
		return &s, &e
	case RangeThisMonth:
		s := StartOfDay(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()))
		e := EndOfDay(today)
		return &s, &e
	case RangeThisWeek:
		// Monday-based week: Sunday belongs to the week that started six
		// days earlier.
		offset := (int(today.Weekday()) + 6) % 7
		s := StartOfDay(today.AddDate(0, 0, -offset))
		e := EndOfDay(today)
		return &s, &e
	case RangeLastMonth:
		firstOfThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		s := StartOfDay(firstOfThis.AddDate(0, -1, 0))
		e := EndOfDay(firstOfThis.AddDate(0, 0, -1))
		return &s, &e
	default:
		if customStart != nil {
			s := StartOfDay(*customStart)
			start = &s
		}
		if customEnd != nil {
			e := EndOfDay(*customEnd)
			end = &e
		}
		return start, end
	}
}

// StartOfDay truncates t to 00:00:00.000 in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay moves t to 23:59:59.999 in its own location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
