package utils

import (
	"time"
)

// DateLayout is the ISO-8601 calendar date format used on the wire and in cache keys.
const DateLayout = "2006-01-02"

// TruncateDay drops the clock part of t and moves it to UTC midnight of the same calendar date.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(DateLayout, dateStr)
}

func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}
