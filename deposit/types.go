// Package deposit implements the bank term-deposit domain on top of the
// generic engine: banks, deposits, the reallocation advisor, the maturity
// timeline and staleness checks.
package deposit

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusActive Status = "Active"
	StatusClosed Status = "Closed"
)

// ParseStatus converts a stored or user-supplied value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusClosed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", generic.ErrInvalidRecord, s)
	}
}

// =============================================================================
// BANK
// =============================================================================

// Bank is a counterparty offering a deposit product. Name is unique.
type Bank struct {
	Name        string
	Rate        decimal.Decimal  // offered annual rate, fraction
	Capacity    generic.Capacity // allowed share of the whole portfolio
	Commission  decimal.Decimal  // transfer cost, fraction of moved principal
	PayStrategy generic.PayStrategy
}

func (b Bank) Validate() error {
	if b.Name == "" {
		return &ValidationError{Record: "bank", Field: "name", Message: "required"}
	}
	if err := b.Capacity.Validate(); err != nil {
		return &ValidationError{Record: "bank " + b.Name, Field: "capacity", Message: err.Error()}
	}
	if b.Commission.IsNegative() {
		return &ValidationError{Record: "bank " + b.Name, Field: "commission", Message: "must not be negative"}
	}
	if !b.PayStrategy.Valid() {
		return &ValidationError{Record: "bank " + b.Name, Field: "pay_strategy", Message: fmt.Sprintf("unknown value %q", b.PayStrategy)}
	}
	return nil
}

// =============================================================================
// DEPOSIT
// =============================================================================

// Deposit is one term-deposit placement. Deposits are immutable once loaded.
type Deposit struct {
	ID          string
	Bank        string
	Name        string
	Open        generic.TimePoint
	Close       generic.TimePoint
	Amount      decimal.Decimal
	Rate        decimal.Decimal // annual nominal rate, fraction
	Status      Status
	PayStrategy generic.PayStrategy
}

// NewID returns a fresh deposit identifier.
func NewID() string {
	return uuid.NewString()
}

// Term is the deposit's [open, close] period.
func (d Deposit) Term() generic.Period {
	return generic.Period{Start: d.Open, End: d.Close}
}

func (d Deposit) IsActive() bool { return d.Status == StatusActive }

func (d Deposit) Validate() error {
	record := "deposit " + d.Name
	if d.Bank == "" {
		return &ValidationError{Record: record, Field: "bank", Message: "required"}
	}
	if err := d.Term().Validate(); err != nil {
		return &ValidationError{Record: record, Field: "close", Message: err.Error()}
	}
	if !d.Amount.IsPositive() {
		return &ValidationError{Record: record, Field: "amount", Message: "must be positive"}
	}
	if d.Status != StatusActive && d.Status != StatusClosed {
		return &ValidationError{Record: record, Field: "status", Message: fmt.Sprintf("unknown value %q", d.Status)}
	}
	if !d.PayStrategy.Valid() {
		return &ValidationError{Record: record, Field: "pay_strategy", Message: fmt.Sprintf("unknown value %q", d.PayStrategy)}
	}
	return nil
}

// Active keeps the deposits that take part in advice and timelines.
func Active(deposits []Deposit) []Deposit {
	var active []Deposit
	for _, d := range deposits {
		if d.IsActive() {
			active = append(active, d)
		}
	}
	return active
}

// Allocation aggregates principal per bank over deposits.
func Allocation(deposits []Deposit) generic.Allocation {
	return generic.NewAllocation(deposits,
		func(d Deposit) string { return d.Bank },
		func(d Deposit) decimal.Decimal { return d.Amount })
}
