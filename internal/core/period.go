package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Weekly  PeriodKind = "weekly"
	Monthly PeriodKind = "monthly"
	Yearly  PeriodKind = "yearly"
)

type PeriodKind string

var ErrInvalidPeriod = errors.New("invalid period")

func ParsePeriodKind(s string) (PeriodKind, error) {
	k := PeriodKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Weekly, Monthly, Yearly:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// HistoryLength is the number of buckets in the comparison series for kind.
func HistoryLength(kind PeriodKind) int {
	switch kind {
	case Weekly:
		return 4
	case Yearly:
		return 3
	default:
		return 6
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// PeriodBounds returns the inclusive [start, end] of the period that lies
// offset periods before the one containing now. Weeks start on Monday.
func PeriodBounds(kind PeriodKind, offset int, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	switch kind {
	case Weekly:
		day := StartOfDay(now)
		// Sunday is 0; shift so Monday is the first day.
		sinceMonday := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -sinceMonday-7*offset)
		return start, start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	case Yearly:
		start := time.Date(now.Year()-offset, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	default:
		// Anchor on the first of the month so AddDate cannot overflow into the next one.
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		start := first.AddDate(0, -offset, 0)
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}
}

// PeriodLabel is the headline label for a period.
func PeriodLabel(kind PeriodKind, start, end time.Time) string {
	switch kind {
	case Weekly:
		return start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006")
	case Yearly:
		return start.Format("2006")
	default:
		return start.Format("January 2006")
	}
}

// HistoryLabel is the short label of a bucket in the comparison series.
func HistoryLabel(kind PeriodKind, start time.Time) string {
	switch kind {
	case Weekly:
		return start.Format("Jan 2")
	case Yearly:
		return start.Format("2006")
	default:
		return start.Format("Jan 2006")
	}
}
