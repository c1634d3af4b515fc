package deposit

import (
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/generic"
	"gonum.org/v1/gonum/stat"
)

// DaysPerMonth converts a per-day earning rate into a monthly figure.
var DaysPerMonth = decimal.RequireFromString("30.5")

// EarnedAt returns the interest d has earned from its open date up to at,
// under its own rate and pay strategy. at is not clamped to the close date.
func EarnedAt(d Deposit, at generic.TimePoint) decimal.Decimal {
	return generic.CalcEarn(d.Amount, d.Rate, d.Open, at, d.PayStrategy)
}

// EarnedAtClose returns the interest d earns over its full term.
func EarnedAtClose(d Deposit) decimal.Decimal {
	return EarnedAt(d, d.Close)
}

// TimelineEntry holds the values needed to draw one deposit on a timeline.
type TimelineEntry struct {
	Deposit       Deposit
	EarnedNow     decimal.Decimal
	EarnedAtClose decimal.Decimal
	DurationDays  int
	OpenedDaysAgo int
	DaysToClose   int // negative once expired
}

func (e TimelineEntry) Expired() bool { return e.DaysToClose < 0 }

// Timeline builds entries for deposits, latest close date first.
func Timeline(deposits []Deposit, now generic.TimePoint) []TimelineEntry {
	ordered := generic.OrderBy(deposits, func(a, b Deposit) int {
		return b.Close.Compare(a.Close)
	})

	entries := make([]TimelineEntry, 0, len(ordered))
	for _, d := range ordered {
		term := d.Term()
		entries = append(entries, TimelineEntry{
			Deposit:       d,
			EarnedNow:     EarnedAt(d, now),
			EarnedAtClose: EarnedAtClose(d),
			DurationDays:  term.Days(),
			OpenedDaysAgo: term.Elapsed(now),
			DaysToClose:   term.Remaining(now),
		})
	}
	return entries
}

// Summary aggregates a timeline.
type Summary struct {
	Count       int
	Total       decimal.Decimal
	AverageRate decimal.Decimal // weighted by amount
	MonthlyEarn decimal.Decimal
}

// Summarize totals the entries. MonthlyEarn spreads each deposit's full-term
// interest evenly over its duration; deposits opened and closed on the same
// day have no duration and are left out of it.
func Summarize(entries []TimelineEntry) Summary {
	s := Summary{Count: len(entries), Total: decimal.Zero, AverageRate: decimal.Zero, MonthlyEarn: decimal.Zero}
	if len(entries) == 0 {
		return s
	}

	rates := make([]float64, len(entries))
	weights := make([]float64, len(entries))
	perDay := decimal.Zero
	for i, e := range entries {
		s.Total = s.Total.Add(e.Deposit.Amount)
		rates[i] = e.Deposit.Rate.InexactFloat64()
		weights[i] = e.Deposit.Amount.InexactFloat64()
		if e.DurationDays != 0 {
			perDay = perDay.Add(e.EarnedAtClose.Div(decimal.NewFromInt(int64(e.DurationDays))))
		}
	}

	if s.Total.IsPositive() {
		s.AverageRate = decimal.NewFromFloat(stat.Mean(rates, weights))
	}
	s.MonthlyEarn = perDay.Mul(DaysPerMonth)
	return s
}
