package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Calendar timestamp used for deposit schedules
// =============================================================================

// TimePoint is a wall-clock timestamp. Deposit open/close dates are day
// granular; "now" keeps its time of day so that the remaining days of a
// deposit shrink during the day exactly like a naive local clock would.
type TimePoint struct {
	Time        time.Time
	Granularity Granularity
}

type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityExact
)

const DateFormat = "2006-01-02"

const dateTimeFormat = "2006-01-02T15:04:05"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Granularity: GranularityDay}
}

func NewTimePointAt(year int, month time.Month, day, hour, min, sec int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, hour, min, sec, 0, time.UTC), Granularity: GranularityExact}
}

// FromTime keeps the wall-clock reading of t in its own location and
// reinterprets it in UTC, so that all arithmetic is free of DST jumps.
func FromTime(t time.Time) TimePoint {
	return NewTimePointAt(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Now returns the local wall-clock time as a TimePoint.
func Now() TimePoint {
	return FromTime(time.Now())
}

// ParseTimePoint accepts "2006-01-02" (midnight) or "2006-01-02T15:04:05".
func ParseTimePoint(s string) (TimePoint, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "T") {
		t, err := time.Parse(DateFormat, s)
		if err != nil {
			return TimePoint{}, fmt.Errorf("invalid date %q, want %q: %w", s, DateFormat, err)
		}
		return TimePoint{Time: t, Granularity: GranularityDay}, nil
	}
	t, err := time.Parse(dateTimeFormat, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid timestamp %q, want %q: %w", s, dateTimeFormat, err)
	}
	tp := TimePoint{Time: t, Granularity: GranularityExact}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		tp.Granularity = GranularityDay
	}
	return tp, nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }

// Compare returns -1, 0 or +1, usable with OrderBy.
func (tp TimePoint) Compare(other TimePoint) int { return tp.normalize().Compare(other.normalize()) }

func (tp TimePoint) normalize() time.Time {
	switch tp.Granularity {
	case GranularityDay:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return tp.Time
	}
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n), Granularity: tp.Granularity} }

// AddMonths moves n calendar months, keeping the day of month when it exists
// in the target month and clamping to the month's last day otherwise
// (Jan 31 + 1 month = Feb 28/29). time.AddDate would overflow into March.
func (tp TimePoint) AddMonths(n int) TimePoint {
	t := tp.Time
	y, m := t.Year(), int(t.Month())-1+n
	y += m / 12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	day := t.Day()
	if last := daysIn(y, month); day > last {
		day = last
	}
	return TimePoint{
		Time:        time.Date(y, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()),
		Granularity: tp.Granularity,
	}
}

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	switch tp.Granularity {
	case GranularityDay:
		return tp.Time.Format(DateFormat)
	default:
		return tp.Time.Format(dateTimeFormat)
	}
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the number of whole days from -> to, truncated toward
// zero. Negative when to is before from.
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()) / (24 * time.Hour))
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
