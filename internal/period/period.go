// Package period computes the date ranges reports are run over: whole
// calendar months and the month-to-date / last-month-to-date pair.
package period

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/salesreport/internal/types"
)

// Range is an inclusive [Start, End] interval with a display label.
type Range struct {
	Label string
	Start time.Time
	End   time.Time
}

// StartMillis and EndMillis return the bounds as record timestamps.
func (r Range) StartMillis() int64 { return types.Millis(r.Start) }
func (r Range) EndMillis() int64   { return types.Millis(r.End) }

// Contains reports whether a record timestamp falls inside the range.
func (r Range) Contains(ms int64) bool {
	return ms >= r.StartMillis() && ms <= r.EndMillis()
}

// Filter returns the records inside the range in their original order.
func (r Range) Filter(records []types.SaleRecord) []types.SaleRecord {
	var out []types.SaleRecord
	for _, rec := range records {
		if r.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	return out
}

// endOfDay is the last representable millisecond of t's day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// MonthRange returns the whole calendar month in loc.
func MonthRange(year int, month time.Month, loc *time.Location) Range {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := start.AddDate(0, 1, -1)
	return Range{
		Label: start.Format("January 2006"),
		Start: start,
		End:   endOfDay(last),
	}
}

// ParseMonth reads "YYYY-MM" into a MonthRange.
func ParseMonth(s string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", s, err)
	}
	return MonthRange(t.Year(), t.Month(), loc), nil
}

// MTD returns the month-to-date range of the selected month. For the
// current month it ends today; for a past month it is the whole month.
func MTD(selected Range, now time.Time) Range {
	now = now.In(selected.Start.Location())
	r := selected
	r.Label = "MTD " + selected.Start.Format("Jan 2006")
	if sameMonth(selected.Start, now) {
		r.End = endOfDay(now)
	}
	return r
}

// LMTD returns the comparable range in the month before selected.
//
// When selected is the current month, LMTD runs from the first of last
// month to the same day of month as now, clamped to last month's length.
// Otherwise it is the whole previous month.
func LMTD(selected Range, now time.Time) Range {
	loc := selected.Start.Location()
	now = now.In(loc)
	prev := selected.Start.AddDate(0, -1, 0)
	r := MonthRange(prev.Year(), prev.Month(), loc)
	r.Label = "LMTD " + prev.Format("Jan 2006")

	if sameMonth(selected.Start, now) {
		lastDay := r.End.Day()
		day := now.Day()
		if day > lastDay {
			day = lastDay
		}
		r.End = endOfDay(time.Date(prev.Year(), prev.Month(), day, 0, 0, 0, 0, loc))
	}
	return r
}

// Span labels the months covered by min..max timestamps: "January 2024"
// or "January 2024 - March 2024". With no records it labels now.
func Span(minMs, maxMs int64, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}
	if minMs > maxMs {
		return now.In(loc).Format("January 2006")
	}
	start := time.UnixMilli(minMs).In(loc).Format("January 2006")
	end := time.UnixMilli(maxMs).In(loc).Format("January 2006")
	if start == end {
		return start
	}
	return start + " - " + end
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
