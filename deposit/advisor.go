/*
advisor.go - Reallocation advisor

PURPOSE:
  For every active deposit, decides whether closing it and reopening the
  money at a better bank earns more than keeping it, once the transfer
  commission is paid. Emits one Suggestion per deposit that clears
  MinBenefit.

ALGORITHM (per call):
  1. Order banks by rate, highest first (stable: ties keep input order)
  2. Index banks by name (a later duplicate name wins)
  3. Aggregate principal per bank and in total (generic.Allocation)
  4. For each deposit, in input order:
     a. Resolve its bank; unknown bank aborts the whole call
     b. Candidate = own bank, no commission
     c. If the own bank may shrink by the deposit amount (lower bound),
        scan the ordered banks: stop at the own bank, skip banks that would
        exceed their upper bound, take the first one left
     d. projected = CalcEarn(amount, candidate rate, now, close) - commission
     e. current   = CalcEarn(amount, deposit rate, open, close)
     f. Suggest if projected - current >= MinBenefit

  The scan stops at the own bank because every bank after it in the
  ordering has an equal or lower rate.

  When the candidate stays the own bank, projected uses the bank's offered
  rate from now on, so reopening at the same bank can still be suggested.
*/
package deposit

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/generic"
)

// DefaultMinBenefit is the smallest net benefit worth suggesting.
var DefaultMinBenefit = decimal.NewFromInt(10)

// Suggestion recommends moving one deposit to another bank.
type Suggestion struct {
	DepositID   string
	DepositName string
	Amount      decimal.Decimal
	FromBank    string
	ToBank      string
	FromRate    decimal.Decimal
	ToRate      decimal.Decimal
	Benefit     decimal.Decimal // net of Commission
	Commission  decimal.Decimal
}

// Advice is the outcome of one advisor run.
type Advice struct {
	Suggestions []Suggestion
	GeneratedAt generic.TimePoint
}

// NoSuggestions reports the successful "nothing worth moving" outcome.
func (a *Advice) NoSuggestions() bool {
	return len(a.Suggestions) == 0
}

// Advisor produces reallocation advice. The zero value is not usable;
// construct with NewAdvisor.
type Advisor struct {
	MinBenefit decimal.Decimal
	Now        func() generic.TimePoint
	Logger     zerolog.Logger
}

func NewAdvisor(logger zerolog.Logger) *Advisor {
	return &Advisor{
		MinBenefit: DefaultMinBenefit,
		Now:        generic.Now,
		Logger:     logger.With().Str("component", "advisor").Logger(),
	}
}

// SuggestReallocations runs the advisor over active deposits. It returns a
// *UnknownBankError, and no partial advice, when a deposit's bank is not
// among banks.
func (a *Advisor) SuggestReallocations(active []Deposit, banks []Bank) (*Advice, error) {
	now := a.Now()
	ordered := generic.OrderBy(banks, generic.Descending(func(x, y Bank) int {
		return x.Rate.Cmp(y.Rate)
	}))
	byName := generic.IndexBy(ordered, func(b Bank) string { return b.Name })
	alloc := Allocation(active)

	advice := &Advice{GeneratedAt: now}
	for _, d := range active {
		own, ok := byName[d.Bank]
		if !ok {
			return nil, &UnknownBankError{DepositID: d.ID, DepositName: d.Name, Bank: d.Bank}
		}

		target := a.bestCandidate(d, own, ordered, alloc)
		commission := decimal.Zero
		if target.Name != own.Name {
			commission = d.Amount.Mul(target.Commission)
		}

		projected := generic.CalcEarn(d.Amount, target.Rate, now, d.Close, target.PayStrategy).Sub(commission)
		current := generic.CalcEarn(d.Amount, d.Rate, d.Open, d.Close, d.PayStrategy)
		benefit := projected.Sub(current)

		a.Logger.Debug().
			Str("deposit", d.Name).
			Str("from", own.Name).
			Str("to", target.Name).
			Str("benefit", benefit.StringFixed(2)).
			Msg("evaluated deposit")

		if benefit.LessThan(a.MinBenefit) {
			continue
		}
		advice.Suggestions = append(advice.Suggestions, Suggestion{
			DepositID:   d.ID,
			DepositName: d.Name,
			Amount:      d.Amount,
			FromBank:    d.Bank,
			ToBank:      target.Name,
			FromRate:    d.Rate,
			ToRate:      target.Rate,
			Benefit:     benefit,
			Commission:  commission,
		})
	}
	return advice, nil
}

func (a *Advisor) bestCandidate(d Deposit, own Bank, ordered []Bank, alloc generic.Allocation) Bank {
	if !generic.FitsDiversification(own.Capacity, own.Name, d.Amount.Neg(), alloc, generic.CheckLower) {
		a.Logger.Debug().Str("deposit", d.Name).Str("bank", own.Name).Msg("pinned by lower bound")
		return own
	}
	for _, b := range ordered {
		if b.Name == own.Name {
			break
		}
		if !generic.FitsDiversification(b.Capacity, b.Name, d.Amount, alloc, generic.CheckUpper) {
			continue
		}
		return b
	}
	return own
}

// ByBenefit orders suggestions by net benefit, largest first.
func ByBenefit(a, b Suggestion) int {
	if c := b.Benefit.Cmp(a.Benefit); c != 0 {
		return c
	}
	return strings.Compare(a.DepositName, b.DepositName)
}
