package repository

import (
	"fmt"
	"time"
)

// DateFormat is the wire/storage format for date-only columns.
const DateFormat = "2006-01-02"

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
// SQLite hands dates back as text, so every scan of a DATE/DATETIME column
// goes through here.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(DateFormat, str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			// sqlite CURRENT_TIMESTAMP emits this shape
			returnTime, err = time.Parse("2006-01-02 15:04:05", str)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
			}
		}
	}
	return returnTime.UTC(), nil
}

// FormatDate renders a time as a date-only storage string.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}
