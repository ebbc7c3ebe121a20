package shared

import "time"

// DateTimeFormat is the canonical timestamp layout used on every
// external surface (JSON responses, log lines, parsed input files).
// It renders as yyyy-MM-dd HH:mm:ss.
const DateTimeFormat = "2006-01-02 15:04:05"

// FormatTime renders t in the canonical layout.
func FormatTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}

// ParseTime parses a timestamp in the canonical layout.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(DateTimeFormat, s)
}

// Midnight returns 00:00:00 of t's day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
