package domain

import "time"

// ISODateLayout is the date format used by the rate service.
const ISODateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PreviousDay returns the calendar day before t.
func PreviousDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, -1)
}

// FormatISODate formats t as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}
