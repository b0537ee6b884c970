package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the calendar-date exchange format.
const DateLayout = "2006-01-02"

// DateOf drops the time of day from t, keeping the calendar date as seen in t's location.
// The result is midnight UTC so that day arithmetic never crosses a DST boundary.
func DateOf(t time.Time) time.Time {
	d := now.New(t).BeginningOfDay()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DaysBetween counts whole calendar days from `from` to `to`. Negative when to is earlier.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// Today returns the current calendar date in loc.
func Today(clock func() time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(clock().In(loc))
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp and returns its calendar date.
// Timestamps keep the calendar date they carry in their own offset.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return DateOf(t), nil
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}
