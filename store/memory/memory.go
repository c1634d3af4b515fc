// Package memory provides an in-memory deposit.Store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps records in maps plus their keys in insertion order.
type Memory struct {
	mu           sync.RWMutex
	banks        map[string]deposit.Bank
	bankOrder    []string
	deposits     map[string]deposit.Deposit
	depositOrder []string
	modified     time.Time
}

var _ deposit.Store = (*Memory)(nil)

func NewMemory() *Memory {
	m := &Memory{}
	m.clear()
	return m
}

func (m *Memory) SaveBank(_ context.Context, b deposit.Bank) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.banks[b.Name]; !ok {
		m.bankOrder = append(m.bankOrder, b.Name)
	}
	m.banks[b.Name] = b
	m.touch()
	return nil
}

func (m *Memory) GetBank(_ context.Context, name string) (*deposit.Bank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.banks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", generic.ErrBankNotFound, name)
	}
	return &b, nil
}

// ListBanks returns banks in insertion order.
func (m *Memory) ListBanks(_ context.Context) ([]deposit.Bank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	banks := make([]deposit.Bank, 0, len(m.bankOrder))
	for _, name := range m.bankOrder {
		banks = append(banks, m.banks[name])
	}
	return banks, nil
}

func (m *Memory) DeleteBank(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.banks[name]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrBankNotFound, name)
	}
	delete(m.banks, name)
	m.bankOrder = slices.DeleteFunc(m.bankOrder, func(n string) bool { return n == name })
	m.touch()
	return nil
}

func (m *Memory) SaveDeposit(_ context.Context, d deposit.Deposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deposits[d.ID]; !ok {
		m.depositOrder = append(m.depositOrder, d.ID)
	}
	m.deposits[d.ID] = d
	m.touch()
	return nil
}

func (m *Memory) GetDeposit(_ context.Context, id string) (*deposit.Deposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.deposits[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", generic.ErrDepositNotFound, id)
	}
	return &d, nil
}

// ListDeposits returns deposits in insertion order.
func (m *Memory) ListDeposits(_ context.Context) ([]deposit.Deposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	deposits := make([]deposit.Deposit, 0, len(m.depositOrder))
	for _, id := range m.depositOrder {
		deposits = append(deposits, m.deposits[id])
	}
	return deposits, nil
}

func (m *Memory) DeleteDeposit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deposits[id]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrDepositNotFound, id)
	}
	delete(m.deposits, id)
	m.depositOrder = slices.DeleteFunc(m.depositOrder, func(k string) bool { return k == id })
	m.touch()
	return nil
}

func (m *Memory) ReplaceAll(_ context.Context, banks []deposit.Bank, deposits []deposit.Deposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
	for _, b := range banks {
		if _, ok := m.banks[b.Name]; !ok {
			m.bankOrder = append(m.bankOrder, b.Name)
		}
		m.banks[b.Name] = b
	}
	for _, d := range deposits {
		if _, ok := m.deposits[d.ID]; !ok {
			m.depositOrder = append(m.depositOrder, d.ID)
		}
		m.deposits[d.ID] = d
	}
	m.touch()
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
	m.modified = time.Time{}
	return nil
}

func (m *Memory) LastModified(_ context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modified, nil
}

func (m *Memory) clear() {
	m.banks = make(map[string]deposit.Bank)
	m.bankOrder = nil
	m.deposits = make(map[string]deposit.Deposit)
	m.depositOrder = nil
}

func (m *Memory) touch() {
	m.modified = time.Now().UTC()
}
