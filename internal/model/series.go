package model

import (
	"fmt"
	"time"
)

// DateRange is an inclusive pair of calendar dates, Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange returns the range [start, end], truncated to days.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("invalid date range: %s after %s", FormatDate(r.Start), FormatDate(r.End))
	}
	return r, nil
}

// Span returns (End - Start) in days.
func (r DateRange) Span() int {
	return DaysBetween(r.Start, r.End)
}

// Days returns the number of calendar days covered, both ends included.
func (r DateRange) Days() int {
	return r.Span() + 1
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ContainsRange reports whether o lies fully inside r.
func (r DateRange) ContainsRange(o DateRange) bool {
	return r.Contains(o.Start) && r.Contains(o.End)
}

func (r DateRange) String() string {
	return FormatDate(r.Start) + ".." + FormatDate(r.End)
}

// TimeSeries is an ordered sequence of daily values anchored at Range.
// A dense series holds exactly Range.Days() values.
type TimeSeries struct {
	Range  DateRange
	Values []float64
}

// Len returns the number of values.
func (s TimeSeries) Len() int {
	return len(s.Values)
}

// Dense reports whether the series holds one value per day of its range.
func (s TimeSeries) Dense() bool {
	return len(s.Values) == s.Range.Days()
}

// Extend returns a copy of s with values appended and the end date advanced
// by len(values) days. s is left untouched.
func (s TimeSeries) Extend(values []float64) TimeSeries {
	out := make([]float64, 0, len(s.Values)+len(values))
	out = append(out, s.Values...)
	out = append(out, values...)
	return TimeSeries{
		Range:  DateRange{Start: s.Range.Start, End: AddDays(s.Range.End, len(values))},
		Values: out,
	}
}

// Points pairs every value with its date, starting at Range.Start.
func (s TimeSeries) Points() []DatedValue {
	pts := make([]DatedValue, len(s.Values))
	for i, v := range s.Values {
		pts[i] = DatedValue{Date: AddDays(s.Range.Start, i), Value: v}
	}
	return pts
}
