package utils

import "time"

// Calendar helpers. Comparisons happen in the location of the first argument,
// so callers decide which time zone defines "a day".

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay is 23:59:59.999999999 of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// HasTimeOfDay reports whether t carries an explicit, non-midnight time.
func HasTimeOfDay(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0
}

func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayBefore reports whether a's calendar date precedes b's.
func DayBefore(a, b time.Time) bool {
	return StartOfDay(a).Before(StartOfDay(b.In(a.Location())))
}

// DayAfter reports whether a's calendar date follows b's.
func DayAfter(a, b time.Time) bool {
	return StartOfDay(a).After(StartOfDay(b.In(a.Location())))
}

// DaysBetween counts calendar days from a to b, negative when b is earlier.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	// Counted on UTC dates so DST shifts cannot shorten a day.
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
