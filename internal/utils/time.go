package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
)

// DaysInMonth returns the number of calendar days in the month containing t.
func DaysInMonth(t time.Time) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalendarDayDiff returns a - b in whole calendar days. Only the calendar
// fields of each value are used, so time-of-day and DST transitions never
// shift the result.
func CalendarDayDiff(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(da.Sub(db).Hours() / 24)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfYear returns January 1st of the year containing t.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// EndOfYear returns December 31st of the year containing t.
func EndOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
}

// DaysInYear returns 365 or 366 for the given year.
func DaysInYear(year int) int {
	return CalendarDayDiff(time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
}

// FormatISODate renders t as a date-key from its own calendar fields.
// Callers must not convert to UTC first: a local 00:30 would land on the
// previous day.
func FormatISODate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// MonthKey renders the YYYY-MM key of the month containing t.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseDateKey parses a YYYY-MM-DD key as local midnight.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", key, err)
	}
	return t, nil
}

// IsValidDateKey reports whether key is a real YYYY-MM-DD date.
func IsValidDateKey(key string) bool {
	_, err := ParseDateKey(key)
	return err == nil
}

// ParseMonthKey parses a YYYY-MM key as local midnight on the 1st.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.MonthFormat, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", key, err)
	}
	return t, nil
}

// IsValidMonthKey reports whether key is a YYYY-MM month.
func IsValidMonthKey(key string) bool {
	_, err := ParseMonthKey(key)
	return err == nil
}

// MonthBounds returns the closed date-key range covering a month: the 1st
// through the last possible day-of-month. The upper bound is always "-31" so
// the range compares lexically without knowing the month length.
func MonthBounds(monthKey string) (first, last string) {
	return monthKey + "-01", monthKey + "-31"
}

// InMonth reports whether dateKey falls in the closed MonthBounds range.
func InMonth(dateKey, monthKey string) bool {
	first, last := MonthBounds(monthKey)
	return dateKey >= first && dateKey <= last
}

// HasMonthPrefix reports whether dateKey starts with the month key.
func HasMonthPrefix(dateKey, monthKey string) bool {
	return strings.HasPrefix(dateKey, monthKey)
}

// ResolveDate turns "", "today" or "yesterday" into a key relative to now,
// and validates anything else as a YYYY-MM-DD key.
func ResolveDate(input string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "today":
		return FormatISODate(now), nil
	case "yesterday":
		return FormatISODate(now.AddDate(0, 0, -1)), nil
	}
	if !IsValidDateKey(input) {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", input)
	}
	return input, nil
}

// ResolveMonth turns "" into the current month key and validates anything else.
func ResolveMonth(input string, now time.Time) (string, error) {
	if strings.TrimSpace(input) == "" {
		return MonthKey(now), nil
	}
	if !IsValidMonthKey(input) {
		return "", fmt.Errorf("invalid month format: %s (expected YYYY-MM)", input)
	}
	return input, nil
}
