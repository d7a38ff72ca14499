package generic

// =============================================================================
// PERIOD - Balance boundaries
// =============================================================================

// Period is a half-open interval [Start, End). PTO years run from Jan 1 up to,
// but not including, Jan 1 of the next year, so a request that starts on
// Dec 31 belongs to the year it starts in.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// CalendarYear returns [Jan 1 year, Jan 1 year+1).
func CalendarYear(year int) Period {
	return Period{Start: StartOfYear(year), End: StartOfYear(year + 1)}
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + ")"
}

// MonthsRemaining counts the months of the year left from the month of t,
// inclusive: a January start yields 12, a December start yields 1.
func MonthsRemaining(t TimePoint) int {
	return 12 - t.MonthIndex()
}
