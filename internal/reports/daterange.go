package reports

import (
	"fmt"
	"time"
)

// DateRange bounds a reporting window at day granularity. A nil bound leaves
// that side open; a range with both bounds nil selects everything.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Unbounded reports whether the range selects all time.
func (r DateRange) Unbounded() bool {
	return r.Start == nil && r.End == nil
}

// Bounded reports whether both ends of the window are set.
func (r DateRange) Bounded() bool {
	return r.Start != nil && r.End != nil
}

// Contains reports whether t falls inside the window. Both bounds are
// inclusive; the end bound is widened to the last instant of its day.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(endOfDay(*r.End)) {
		return false
	}
	return true
}

// Bounds returns the effective window edges, end widened to end-of-day.
// Suitable for passing to range-scoped repository queries.
func (r DateRange) Bounds() (from, to *time.Time) {
	from = r.Start
	if r.End != nil {
		eod := endOfDay(*r.End)
		to = &eod
	}
	return from, to
}

// Previous returns the window of equal length immediately preceding this one.
// Only bounded ranges have a comparable baseline.
func (r DateRange) Previous() (DateRange, bool) {
	if !r.Bounded() {
		return DateRange{}, false
	}
	days := int(startOfDay(*r.End).Sub(startOfDay(*r.Start)).Hours()/24) + 1
	prevEnd := startOfDay(r.Start.AddDate(0, 0, -1))
	prevStart := startOfDay(prevEnd.AddDate(0, 0, -(days - 1)))
	return DateRange{Start: &prevStart, End: &prevEnd}, true
}

// FilterByDate returns the items whose timestamp falls inside the window.
// The input slice is never mutated; an unbounded range copies everything.
func FilterByDate[T any](items []T, at func(T) time.Time, r DateRange) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if r.Contains(at(item)) {
			out = append(out, item)
		}
	}
	return out
}

// Preset names a quick-filter window resolved against an explicit clock.
type Preset string

const (
	PresetToday      Preset = "today"
	PresetYesterday  Preset = "yesterday"
	PresetThisWeek   Preset = "thisWeek"
	PresetLastWeek   Preset = "lastWeek"
	PresetThisMonth  Preset = "thisMonth"
	PresetLastMonth  Preset = "lastMonth"
	PresetLast30Days Preset = "last30Days"
	PresetLast90Days Preset = "last90Days"
	PresetAllTime    Preset = "allTime"
)

// ResolvePreset maps a quick-filter preset to a concrete window as of now.
// Weeks start on Monday.
func ResolvePreset(p Preset, now time.Time) (DateRange, error) {
	today := startOfDay(now)
	switch p {
	case PresetToday:
		return rangeOf(today, today), nil
	case PresetYesterday:
		day := today.AddDate(0, 0, -1)
		return rangeOf(day, day), nil
	case PresetThisWeek:
		return rangeOf(startOfWeek(today), today), nil
	case PresetLastWeek:
		monday := startOfWeek(today)
		return rangeOf(monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -1)), nil
	case PresetThisMonth:
		return rangeOf(firstOfMonth(today), today), nil
	case PresetLastMonth:
		first := firstOfMonth(today).AddDate(0, -1, 0)
		return rangeOf(first, firstOfMonth(today).AddDate(0, 0, -1)), nil
	case PresetLast30Days:
		return rangeOf(today.AddDate(0, 0, -30), today), nil
	case PresetLast90Days:
		return rangeOf(today.AddDate(0, 0, -90), today), nil
	case PresetAllTime:
		return DateRange{}, nil
	default:
		return DateRange{}, fmt.Errorf("reports: unknown preset %q", p)
	}
}

func rangeOf(start, end time.Time) DateRange {
	return DateRange{Start: &start, End: &end}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t.AddDate(0, 0, -offset))
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
