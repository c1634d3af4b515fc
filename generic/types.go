/*
Package generic provides the core computation engine for the deposit system.

PURPOSE:
  This package contains domain-agnostic types and algorithms: decimal money
  helpers, calendar time points, interest accrual, capacity (diversification)
  bounds and keyed collection helpers. It knows nothing about banks or
  deposits; the deposit package builds the domain on top of it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money values and rates are decimal.Decimal (never float64)
  - Rates are fractions: 0.08 means 8% per year
  - Percent converts a rate for display; storage keeps the fraction

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal avoids floating-point drift in accruals
  2. Purity: every calculation is a total function over its inputs
  3. No hidden state: nothing in this package is cached across calls

USAGE:
  principal := decimal.NewFromInt(100000)
  rate := decimal.RequireFromString("0.05")
  earned := generic.CalcEarn(principal, rate, open, close, generic.PayOnce)

SEE ALSO:
  - accrual.go: Interest accrual engine
  - policy.go: Diversification bounds and allocation snapshot
  - collections.go: OrderBy / GroupBy / IndexBy helpers
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// Percent renders a fractional rate as a percentage value (0.08 -> 8).
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

var hundred = decimal.NewFromInt(100)
