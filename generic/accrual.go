/*
accrual.go - Interest accrual engine

PURPOSE:
  Computes the interest a principal earns over a date range at a fixed
  annual rate. This is the only place interest is calculated; the advisor,
  the timeline and the API all go through CalcEarn or AccrualSchedule.

ALGORITHM:
  1. daily rate = annual rate / 365.25 (leap years are not special-cased)
  2. Walk forward one calendar month at a time from start. A step ends at
     step start + 1 month, or at end if that would overshoot; the clipped
     step is the last one.
  3. step interest = balance * whole days in step * daily rate
  4. Capitalization adds the step interest to the balance before the next
     step. Once keeps the balance at the principal.
  5. The result is the sum of all step interests.

MONTH STEPPING:
  Each step starts where the previous one ended, and AddMonths clamps the
  day of month, so a Jan 31 start walks Jan 31 -> Feb 28 -> Mar 28 -> ...
  Changing this changes the numbers.

EDGE CASES:
  - start == end: one zero-length step, zero interest
  - end lands exactly on a step boundary: a trailing zero-length step is
    produced; it contributes nothing
  - start > end: one negative-length step (caller responsibility)
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY STRATEGY
// =============================================================================

// PayStrategy selects how accrued interest is treated between steps.
type PayStrategy string

const (
	// PayCapitalization compounds monthly: interest joins the balance.
	PayCapitalization PayStrategy = "Capitalization"
	// PayOnce is simple interest, paid at the end of the term.
	PayOnce PayStrategy = "Once"
)

func (s PayStrategy) Valid() bool {
	return s == PayCapitalization || s == PayOnce
}

// ParsePayStrategy converts a stored or user-supplied value.
func ParsePayStrategy(s string) (PayStrategy, error) {
	ps := PayStrategy(s)
	if !ps.Valid() {
		return "", fmt.Errorf("%w: unknown pay strategy %q", ErrInvalidRecord, s)
	}
	return ps, nil
}

// DaysPerYear is the fixed divisor turning an annual rate into a daily one.
var DaysPerYear = decimal.RequireFromString("365.25")

// =============================================================================
// ACCRUAL SCHEDULE
// =============================================================================

// AccrualPeriod is one monthly step of a schedule.
type AccrualPeriod struct {
	Period   Period
	Days     int
	Balance  decimal.Decimal // balance the interest was computed on
	Interest decimal.Decimal
}

// AccrualSchedule returns the step-by-step breakdown of the interest earned
// on principal between start and end. See the file header for the rules.
func AccrualSchedule(principal, annualRate decimal.Decimal, start, end TimePoint, strategy PayStrategy) []AccrualPeriod {
	dailyRate := annualRate.Div(DaysPerYear)
	balance := principal
	current := start

	var steps []AccrualPeriod
	for {
		next := current.AddMonths(1)
		last := false
		if next.After(end) {
			next = end
			last = true
		}

		days := DaysBetween(current, next)
		interest := balance.Mul(decimal.NewFromInt(int64(days))).Mul(dailyRate)
		steps = append(steps, AccrualPeriod{
			Period:   Period{Start: current, End: next},
			Days:     days,
			Balance:  balance,
			Interest: interest,
		})

		if strategy == PayCapitalization {
			balance = balance.Add(interest)
		}
		if last {
			return steps
		}
		current = next
	}
}

// CalcEarn returns the total interest earned on principal between start
// and end under the given strategy.
func CalcEarn(principal, annualRate decimal.Decimal, start, end TimePoint, strategy PayStrategy) decimal.Decimal {
	return SumBy(AccrualSchedule(principal, annualRate, start, end, strategy), func(p AccrualPeriod) decimal.Decimal {
		return p.Interest
	})
}
