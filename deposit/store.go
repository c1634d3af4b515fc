/*
store.go - Persistence interface for portfolio input records

PURPOSE:
  Defines the interface between the domain logic and the database. Only
  input records (banks and deposits) are stored. Advice, timelines and
  summaries are always recomputed from them and never persisted.

NOT FOUND:
  GetBank / GetDeposit return an error wrapping generic.ErrBankNotFound /
  generic.ErrDepositNotFound when the record does not exist. Deletes of
  missing records report the same errors.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - store/memory/memory.go: In-memory for testing and demos

SEE ALSO:
  - factory/portfolio.go: JSON documents fed into ReplaceAll
  - api/handlers.go: CRUD endpoints over this interface
*/
package deposit

import (
	"context"
	"time"
)

// Store persists banks and deposits. Implementations are safe for
// concurrent use.
type Store interface {
	// SaveBank inserts or updates a bank. A new bank goes last; an update
	// keeps its place.
	SaveBank(ctx context.Context, bank Bank) error
	GetBank(ctx context.Context, name string) (*Bank, error)
	// ListBanks returns banks in insertion order.
	ListBanks(ctx context.Context) ([]Bank, error)
	DeleteBank(ctx context.Context, name string) error

	SaveDeposit(ctx context.Context, d Deposit) error
	GetDeposit(ctx context.Context, id string) (*Deposit, error)
	// ListDeposits returns deposits in insertion order.
	ListDeposits(ctx context.Context) ([]Deposit, error)
	DeleteDeposit(ctx context.Context, id string) error

	// ReplaceAll swaps the whole portfolio atomically. Records keep the
	// order of the slices.
	ReplaceAll(ctx context.Context, banks []Bank, deposits []Deposit) error
	// Reset removes every record.
	Reset(ctx context.Context) error

	// LastModified is the time of the last write, zero if there was none.
	LastModified(ctx context.Context) (time.Time, error)
}

// Portfolio is a full snapshot of the input records.
type Portfolio struct {
	Banks    []Bank
	Deposits []Deposit
}

// LoadPortfolio reads every bank and deposit from store.
func LoadPortfolio(ctx context.Context, store Store) (*Portfolio, error) {
	banks, err := store.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	deposits, err := store.ListDeposits(ctx)
	if err != nil {
		return nil, err
	}
	return &Portfolio{Banks: banks, Deposits: deposits}, nil
}

// Validate checks every record. It does not check that deposits reference
// known banks; the advisor reports that.
func (p *Portfolio) Validate() error {
	for _, b := range p.Banks {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	for _, d := range p.Deposits {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
