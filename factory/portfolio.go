/*
Package factory provides JSON to Go portfolio conversion.

PURPOSE:
  Converts a JSON portfolio document (banks + deposits) into validated
  deposit.Bank and deposit.Deposit records, and back. This is the only
  ingestion path: the CLI reads files through it, the API import endpoint
  decodes request bodies with it.

JSON SCHEMA:
  {
    "banks": [
      {
        "name": "Alpha",
        "percent": 0.08,
        "min_capacity": 0,
        "max_capacity": 0.5,
        "transfer_commission": 0.01,
        "pay_strategy": "Capitalization"
      }
    ],
    "deposits": [
      {
        "id": "optional, generated when missing",
        "bank": "Alpha",
        "name": "Rainy day",
        "date_open": "2025-01-31",
        "date_close": "2025-07-31T00:00:00",
        "amount": 100000,
        "percent": 0.075,
        "status": "Active",
        "pay_strategy": "Once"
      }
    ]
  }

  Rates and capacities are fractions (0.08 = 8%). Numbers may also be
  given as strings to keep them exact. Dates are "YYYY-MM-DD" (midnight)
  or "YYYY-MM-DDTHH:MM:SS".

KEY FEATURES:
  - Validates every record (deposit.ValidationError on failure)
  - Generates IDs for deposits that have none
  - Does not check that deposits reference known banks; the advisor does

USAGE:
  p, err := factory.LoadPortfolioFile("portfolio.json")
  advice, err := advisor.SuggestReallocations(deposit.Active(p.Deposits), p.Banks)

SEE ALSO:
  - deposit/types.go: Record types and validation rules
  - api/handlers.go: Import endpoint
*/
package factory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PortfolioJSON is the JSON representation of a portfolio.
type PortfolioJSON struct {
	Banks    []BankJSON    `json:"banks"`
	Deposits []DepositJSON `json:"deposits"`
}

// BankJSON represents one bank.
type BankJSON struct {
	Name               string          `json:"name"`
	Percent            decimal.Decimal `json:"percent"`
	MinCapacity        decimal.Decimal `json:"min_capacity"`
	MaxCapacity        decimal.Decimal `json:"max_capacity"`
	TransferCommission decimal.Decimal `json:"transfer_commission"`
	PayStrategy        string          `json:"pay_strategy"`
}

// DepositJSON represents one deposit.
type DepositJSON struct {
	ID          string          `json:"id,omitempty"`
	Bank        string          `json:"bank"`
	Name        string          `json:"name"`
	DateOpen    string          `json:"date_open"`
	DateClose   string          `json:"date_close"`
	Amount      decimal.Decimal `json:"amount"`
	Percent     decimal.Decimal `json:"percent"`
	Status      string          `json:"status"`
	PayStrategy string          `json:"pay_strategy"`
}

// =============================================================================
// DECODING
// =============================================================================

// ParsePortfolio decodes and validates a JSON portfolio document.
func ParsePortfolio(data []byte) (*deposit.Portfolio, error) {
	var doc PortfolioJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid portfolio JSON: %w", err)
	}
	return doc.ToPortfolio()
}

// ReadPortfolio decodes a portfolio from r.
func ReadPortfolio(r io.Reader) (*deposit.Portfolio, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParsePortfolio(data)
}

// LoadPortfolioFile reads and decodes the portfolio at path.
func LoadPortfolioFile(path string) (*deposit.Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio: %w", err)
	}
	p, err := ParsePortfolio(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ToPortfolio converts the document into validated domain records.
func (doc PortfolioJSON) ToPortfolio() (*deposit.Portfolio, error) {
	p := &deposit.Portfolio{
		Banks:    make([]deposit.Bank, 0, len(doc.Banks)),
		Deposits: make([]deposit.Deposit, 0, len(doc.Deposits)),
	}
	for _, bj := range doc.Banks {
		b, err := bj.ToBank()
		if err != nil {
			return nil, err
		}
		p.Banks = append(p.Banks, b)
	}
	for _, dj := range doc.Deposits {
		d, err := dj.ToDeposit()
		if err != nil {
			return nil, err
		}
		p.Deposits = append(p.Deposits, d)
	}
	return p, nil
}

// ToBank converts and validates one bank.
func (bj BankJSON) ToBank() (deposit.Bank, error) {
	b := deposit.Bank{
		Name:        bj.Name,
		Rate:        bj.Percent,
		Capacity:    generic.Capacity{Min: bj.MinCapacity, Max: bj.MaxCapacity},
		Commission:  bj.TransferCommission,
		PayStrategy: generic.PayStrategy(bj.PayStrategy),
	}
	if err := b.Validate(); err != nil {
		return deposit.Bank{}, err
	}
	return b, nil
}

// ToDeposit converts and validates one deposit.
func (dj DepositJSON) ToDeposit() (deposit.Deposit, error) {
	record := "deposit " + dj.Name
	open, err := generic.ParseTimePoint(dj.DateOpen)
	if err != nil {
		return deposit.Deposit{}, &deposit.ValidationError{Record: record, Field: "date_open", Message: err.Error()}
	}
	closeAt, err := generic.ParseTimePoint(dj.DateClose)
	if err != nil {
		return deposit.Deposit{}, &deposit.ValidationError{Record: record, Field: "date_close", Message: err.Error()}
	}

	id := dj.ID
	if id == "" {
		id = deposit.NewID()
	}
	d := deposit.Deposit{
		ID:          id,
		Bank:        dj.Bank,
		Name:        dj.Name,
		Open:        open,
		Close:       closeAt,
		Amount:      dj.Amount,
		Rate:        dj.Percent,
		Status:      deposit.Status(dj.Status),
		PayStrategy: generic.PayStrategy(dj.PayStrategy),
	}
	if err := d.Validate(); err != nil {
		return deposit.Deposit{}, err
	}
	return d, nil
}

// =============================================================================
// ENCODING
// =============================================================================

// FromPortfolio builds the JSON document for p.
func FromPortfolio(p *deposit.Portfolio) PortfolioJSON {
	doc := PortfolioJSON{
		Banks:    make([]BankJSON, 0, len(p.Banks)),
		Deposits: make([]DepositJSON, 0, len(p.Deposits)),
	}
	for _, b := range p.Banks {
		doc.Banks = append(doc.Banks, BankJSON{
			Name:               b.Name,
			Percent:            b.Rate,
			MinCapacity:        b.Capacity.Min,
			MaxCapacity:        b.Capacity.Max,
			TransferCommission: b.Commission,
			PayStrategy:        string(b.PayStrategy),
		})
	}
	for _, d := range p.Deposits {
		doc.Deposits = append(doc.Deposits, DepositJSON{
			ID:          d.ID,
			Bank:        d.Bank,
			Name:        d.Name,
			DateOpen:    d.Open.String(),
			DateClose:   d.Close.String(),
			Amount:      d.Amount,
			Percent:     d.Rate,
			Status:      string(d.Status),
			PayStrategy: string(d.PayStrategy),
		})
	}
	return doc
}

// EncodePortfolio writes p to w as indented JSON.
func EncodePortfolio(w io.Writer, p *deposit.Portfolio) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(FromPortfolio(p))
}
