/*
policy.go - Diversification bounds and allocation snapshot

PURPOSE:
  Decides whether moving money into or out of a holder (a bank) keeps that
  holder's share of the whole portfolio inside its configured bounds.

KEY CONCEPTS:
  - Capacity: the [Min, Max] share a holder may have, as fractions 0-1
  - Allocation: per-holder totals plus the grand total, built once per
    advisor call from the current deposits and never mutated afterwards
  - BoundCheck: which side of Capacity a given move must respect

WHICH BOUND WHEN:
  Withdrawing from the source bank checks only the lower bound: a bank may
  not shrink below its floor. Adding to a candidate bank checks only the
  upper bound: a bank may not grow past its ceiling.

PRECONDITION:
  Allocation.Total must be non-zero. Dividing by a zero decimal panics and
  no caller ever asks about an empty portfolio.

EXAMPLE:
  alloc := NewAllocation(deposits, bankOf, amountOf)
  ok := FitsDiversification(Capacity{Max: decimal.RequireFromString("0.5")}, "B", amount, alloc, CheckUpper)
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CAPACITY
// =============================================================================

// Capacity bounds a holder's share of the portfolio.
type Capacity struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Validate rejects bounds outside 0 <= Min <= Max <= 1.
func (c Capacity) Validate() error {
	one := decimal.NewFromInt(1)
	if c.Min.IsNegative() || c.Max.GreaterThan(one) || c.Min.GreaterThan(c.Max) {
		return &CapacityError{Capacity: c}
	}
	return nil
}

// BoundCheck selects the bounds FitsDiversification enforces.
type BoundCheck uint8

const (
	CheckLower BoundCheck = 1 << iota
	CheckUpper

	CheckBoth = CheckLower | CheckUpper
)

// =============================================================================
// ALLOCATION - Call-scoped aggregate over the active portfolio
// =============================================================================

// Allocation is a snapshot of how much is held per key and in total.
type Allocation struct {
	PerKey map[string]decimal.Decimal
	Total  decimal.Decimal
}

// NewAllocation aggregates items by key, summing value.
func NewAllocation[T any](items []T, key func(T) string, value func(T) decimal.Decimal) Allocation {
	groups := GroupBy(items, key)
	perKey := make(map[string]decimal.Decimal, len(groups))
	for k, group := range groups {
		perKey[k] = SumBy(group, value)
	}
	return Allocation{PerKey: perKey, Total: SumBy(items, value)}
}

// Held returns the amount held under key, zero if absent.
func (a Allocation) Held(key string) decimal.Decimal {
	if v, ok := a.PerKey[key]; ok {
		return v
	}
	return decimal.Zero
}

// ProjectedShare returns (Held(key) + delta) / Total.
func (a Allocation) ProjectedShare(key string, delta decimal.Decimal) decimal.Decimal {
	return a.Held(key).Add(delta).Div(a.Total)
}

// Share returns the current share of key.
func (a Allocation) Share(key string) decimal.Decimal {
	return a.ProjectedShare(key, decimal.Zero)
}

// FitsDiversification reports whether holding delta more (or less, when
// negative) under key keeps its share within bounds. Only the bounds
// selected by check are enforced.
func FitsDiversification(bounds Capacity, key string, delta decimal.Decimal, alloc Allocation, check BoundCheck) bool {
	share := alloc.ProjectedShare(key, delta)
	if check&CheckLower != 0 && share.LessThan(bounds.Min) {
		return false
	}
	if check&CheckUpper != 0 && share.GreaterThan(bounds.Max) {
		return false
	}
	return true
}
