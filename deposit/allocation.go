package deposit

import (
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/generic"
)

// BankShare is one bank's slice of the active portfolio next to its bounds.
type BankShare struct {
	Bank   Bank
	Held   decimal.Decimal
	Share  decimal.Decimal
	Within bool // Min <= Share <= Max
}

// BankShares reports how the active deposits are spread over banks, in the
// order banks are given. An empty portfolio has no shares to report.
func BankShares(active []Deposit, banks []Bank) ([]BankShare, error) {
	alloc := Allocation(active)
	if alloc.Total.IsZero() {
		return nil, generic.ErrEmptyPortfolio
	}

	shares := make([]BankShare, 0, len(banks))
	for _, b := range banks {
		shares = append(shares, BankShare{
			Bank:   b,
			Held:   alloc.Held(b.Name),
			Share:  alloc.Share(b.Name),
			Within: generic.FitsDiversification(b.Capacity, b.Name, decimal.Zero, alloc, generic.CheckBoth),
		})
	}
	return shares, nil
}
