// Package datekey implements the calendar arithmetic shared by the whole
// service. Dates are handled as canonical "YYYY-MM-DD" keys evaluated in a
// single reference timezone, so every comparison and grouping elsewhere
// reduces to plain string operations: the lexicographic order of keys is
// the chronological order of the dates they name.
package datekey

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Layout is the canonical DateKey form.
const Layout = "2006-01-02"

// ZoneName is the fixed reference timezone every normalization is evaluated
// in. It is a process-wide constant, not per-call state.
const ZoneName = "Europe/Madrid"

var location = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		// No tzdata on this host; UTC keeps keys stable even if off by the
		// Madrid offset.
		return time.UTC
	}
	return loc
}

// Location returns the reference timezone.
func Location() *time.Location { return location }

var keyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ErrNotWeekday is returned by EnsureWeekday for Saturdays and Sundays.
var ErrNotWeekday = errors.New("Solo se permiten días laborables")

// timestampLayouts are the non-canonical inputs Normalize accepts, tried in
// order. Layouts without an offset are interpreted in the reference zone.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
}

// FromTime converts a native time into its DateKey, evaluated in the
// reference zone.
func FromTime(t time.Time) string {
	return t.In(location).Format(Layout)
}

// Normalize converts a date-like string into the canonical key. It is
// idempotent: normalizing an already canonical key returns it unchanged.
func Normalize(s string) (string, error) {
	if keyPattern.MatchString(s) {
		t, err := time.ParseInLocation(Layout, s, location)
		if err != nil {
			return "", fmt.Errorf("parse date %q: %w", s, err)
		}
		return t.Format(Layout), nil
	}
	for _, candidate := range timestampLayouts {
		if candidate.zoned {
			if t, err := time.Parse(candidate.layout, s); err == nil {
				return FromTime(t), nil
			}
			continue
		}
		if t, err := time.ParseInLocation(candidate.layout, s, location); err == nil {
			return t.Format(Layout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// IsValid reports whether s is a well-formed DateKey naming a real calendar
// date. The shape check alone is not enough: "2024-02-30" matches the
// pattern but does not round-trip through calendar parsing.
func IsValid(s string) bool {
	if !keyPattern.MatchString(s) {
		return false
	}
	t, err := time.ParseInLocation(Layout, s, location)
	if err != nil {
		return false
	}
	return t.Format(Layout) == s
}

func parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", s, err)
	}
	return t, nil
}

// isoWeekday maps time.Weekday onto ISO numbering: Monday=1 .. Sunday=7.
func isoWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

func mondayOf(t time.Time) time.Time {
	return t.AddDate(0, 0, 1-isoWeekday(t))
}

// IsWeekday reports whether s falls on Monday through Friday. Unparseable
// input is not a weekday.
func IsWeekday(s string) bool {
	t, err := parse(s)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// EnsureWeekday fails with ErrNotWeekday unless s is a working day.
func EnsureWeekday(s string) error {
	if !IsWeekday(s) {
		return ErrNotWeekday
	}
	return nil
}

// WorkWeek returns the five Monday..Friday keys of the ISO week containing
// anchor, no matter which day of that week anchor falls on.
func WorkWeek(anchor string) ([]string, error) {
	t, err := parse(anchor)
	if err != nil {
		return nil, err
	}
	monday := mondayOf(t)
	week := make([]string, 5)
	for i := range week {
		week[i] = monday.AddDate(0, 0, i).Format(Layout)
	}
	return week, nil
}

// MonthGrid returns the complete calendar weeks covering the given month:
// from the Monday on/before the 1st through the Sunday on/after the last
// day. The result length is always a multiple of 7, ready for a 7-column
// calendar with the leading/trailing days of adjacent months filled in.
func MonthGrid(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, location)
	last := first.AddDate(0, 1, -1)

	start := mondayOf(first)
	end := last.AddDate(0, 0, 7-isoWeekday(last))

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(Layout))
	}
	return days
}

// MonthBounds returns the first and last DateKey of a month.
func MonthBounds(year int, month time.Month) (start, end string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, location)
	return first.Format(Layout), first.AddDate(0, 1, -1).Format(Layout)
}

// RemainingWorkWeeks returns the Monday..Friday weeks of anchor's month
// starting at the ISO week containing anchor, through the last ISO week
// that begins on or before the month's end. Earlier weeks are excluded, and
// the final week may spill into the next month.
func RemainingWorkWeeks(anchor string) ([][]string, error) {
	t, err := parse(anchor)
	if err != nil {
		return nil, err
	}
	monthEnd := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, location).AddDate(0, 1, -1)

	var weeks [][]string
	for monday := mondayOf(t); !monday.After(monthEnd); monday = monday.AddDate(0, 0, 7) {
		week := make([]string, 5)
		for i := range week {
			week[i] = monday.AddDate(0, 0, i).Format(Layout)
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// FormatHuman renders a DateKey as DD/MM/YYYY for display. Input that does
// not parse is returned unchanged.
func FormatHuman(s string) string {
	t, err := parse(s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
