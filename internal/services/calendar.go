package services

import (
	"fmt"
	"math"
	"time"
)

const isoDateLayout = "2006-01-02"

// DateOnly truncates a moment to local midnight in the given location.
func DateOnly(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// DaysBetween counts calendar days from a to b, negative when b precedes a.
// Both moments are truncated to local midnight first; rounding absorbs the
// 23h/25h days a DST transition produces.
func DaysBetween(a time.Time, b time.Time, location *time.Location) int {
	from := DateOnly(a, location)
	to := DateOnly(b, location)
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// TodayLocal formats the current local calendar date. It deliberately never
// goes through UTC: a UTC truncation shifts the date near midnight in
// negative-offset zones.
func TodayLocal(now time.Time, location *time.Location) string {
	return DateOnly(now, location).Format(isoDateLayout)
}

func ParseISODate(value string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation(isoDateLayout, value, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return parsed, nil
}

func FormatISODate(value time.Time) string {
	return value.Format(isoDateLayout)
}

// MonthKey maps an ISO date to its YYYY-MM stats bucket.
func MonthKey(dateISO string) string {
	if len(dateISO) < 7 {
		return dateISO
	}
	return dateISO[:7]
}
