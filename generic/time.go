package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date used for start dates, policy effective dates and
// request ranges
// =============================================================================

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseTime accepts either a bare date (2025-03-01) or a full RFC 3339
// timestamp, which is what browsers send from date and datetime inputs.
// Only the calendar date as written is kept: the result is midnight UTC of
// that date, whatever the offset or time of day in the input.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or RFC 3339)", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool  { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool  { return tp.Time.After(other.Time) }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

// MonthIndex is the zero-based month (January = 0, December = 11).
func (tp TimePoint) MonthIndex() int { return int(tp.Time.Month()) - 1 }

func (tp TimePoint) String() string { return tp.Time.Format(DateLayout) }

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }

// FormatTime renders a stored timestamp (RFC 3339, UTC).
func FormatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// FormatTimePtr is FormatTime for nullable columns.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}
