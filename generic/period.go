package generic

import "fmt"

// =============================================================================
// PERIOD - A closed date range [Start, End]
// =============================================================================

// Period is the time range a deposit accrues over, or one monthly step of it.
//
// Examples:
//   - Deposit term: open date - close date
//   - Accrual step: 2025-01-31 - 2025-02-28
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Days returns the number of whole days between Start and End.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End)
}

// Validate rejects periods whose end is before their start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	return nil
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Elapsed returns the whole days from Start to at, which may be negative
// when at precedes the period or exceed Days() when it follows it.
func (p Period) Elapsed(at TimePoint) int {
	return DaysBetween(p.Start, at)
}

// Remaining returns the whole days left until End as seen from at.
// Negative once a full day has passed since End.
func (p Period) Remaining(at TimePoint) int {
	return DaysBetween(at, p.End)
}
