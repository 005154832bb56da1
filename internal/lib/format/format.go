// Package format turns timestamps into display strings.
package format

import (
	"strconv"
	"time"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 3:04 PM"
	// Placeholder is rendered for absent values.
	Placeholder = "-"
)

var layouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Parse accepts RFC3339 timestamps (with or without fraction) and bare ISO dates.
func Parse(value string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date renders an absolute date. Unparsable input is returned as is.
func Date(value string) string {
	if value == "" {
		return Placeholder
	}
	t, ok := Parse(value)
	if !ok {
		return value
	}
	return t.Format(dateLayout)
}

// DateTime renders an absolute date with a 12-hour clock.
func DateTime(value string) string {
	if value == "" {
		return Placeholder
	}
	t, ok := Parse(value)
	if !ok {
		return value
	}
	return t.Format(dateTimeLayout)
}

// Relative renders whole days elapsed since value, e.g. "Today", "1 day ago", "4 days ago".
func Relative(value string, now time.Time) string {
	if value == "" {
		return Placeholder
	}
	t, ok := Parse(value)
	if !ok {
		return value
	}
	return RelativeTime(t, now)
}

// RelativeTime is Relative for an already parsed time.
func RelativeTime(t, now time.Time) string {
	days := DaysBetween(t, now)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "1 day ago"
	default:
		return strconv.Itoa(days) + " days ago"
	}
}

// DaysBetween is the floor of whole days from start to end. Negative when end is before start.
func DaysBetween(start, end time.Time) int {
	diff := end.Sub(start)
	days := int(diff / (24 * time.Hour))
	if diff < 0 && diff%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// DatePtr renders an optional time as an absolute date.
func DatePtr(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return t.Format(dateLayout)
}

// DateTimePtr renders an optional time as an absolute date-time.
func DateTimePtr(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return t.Format(dateTimeLayout)
}

// RelativePtr renders an optional time relative to now.
func RelativePtr(t *time.Time, now time.Time) string {
	if t == nil {
		return Placeholder
	}
	return RelativeTime(*t, now)
}

// ISODate renders an optional time as YYYY-MM-DD, the value format of date inputs.
func ISODate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
