package model

import "time"

// DateLayout is the ISO calendar date layout used for storage and queries.
// Lexical order of strings in this layout equals chronological order.
const DateLayout = "2006-01-02"

// Event is one show air date taken from the feed.
type Event struct {
	UID     string
	Summary string
	// StartDate is the air date at midnight UTC. Use DateOf to build it.
	StartDate time.Time
}

// DateOf drops the time of day and zone of t, keeping the calendar date as
// seen in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date in DateLayout.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// ParseDate parses a DateLayout string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}
