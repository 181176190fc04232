package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the date-only encoding used for user input and display.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the combined encoding records are persisted with.
	DateTimeLayout = "2006-01-02T15:04:05"
)

// ErrEmptyDate is returned when a record carries no date text at all.
var ErrEmptyDate = errors.New("empty date")

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	DateTimeLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate converts a stored date text into a calendar date (midnight UTC).
// Full date-time and date-only encodings are accepted; when neither parses
// the first 10 characters are tried as a date-only value.
func ParseDate(value string) (time.Time, error) {
	str := strings.TrimSpace(value)
	if str == "" {
		return time.Time{}, ErrEmptyDate
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return DateOf(t), nil
		}
	}

	if len(str) > 10 {
		if t, err := time.Parse(DateLayout, str[:10]); err == nil {
			return DateOf(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// DateOf truncates t to its calendar date, keeping the day as written in t's
// own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a stored date text as YYYY-MM-DD, or "N/A".
func FormatDate(value string) string {
	t, err := ParseDate(value)
	if err != nil {
		return "N/A"
	}
	return t.Format(DateLayout)
}
