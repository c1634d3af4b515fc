package deposit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
)

func TestDeposit_Validate(t *testing.T) {
	valid := yearDeposit("d1", "A", "1000", "0.05")
	require.NoError(t, valid.Validate())

	tests := map[string]func(d *deposit.Deposit){
		"close before open": func(d *deposit.Deposit) { d.Close = d.Open.AddDays(-1) },
		"zero amount":       func(d *deposit.Deposit) { d.Amount = dec("0") },
		"missing bank":      func(d *deposit.Deposit) { d.Bank = "" },
		"bad status":        func(d *deposit.Deposit) { d.Status = "Frozen" },
		"bad strategy":      func(d *deposit.Deposit) { d.PayStrategy = "Daily" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			d := valid
			mutate(&d)

			err := d.Validate()

			var vErr *deposit.ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.ErrorIs(t, err, generic.ErrInvalidRecord)
			assert.True(t, generic.IsClientError(err))
		})
	}
}

func TestDeposit_SameDayTermIsValid(t *testing.T) {
	d := termDeposit("d", "1000", "0.05", jan2025, jan2025)
	assert.NoError(t, d.Validate())
}

func TestBank_Validate(t *testing.T) {
	assert.NoError(t, bank("A", "0.05", "0", "1", "0").Validate())
	assert.ErrorIs(t, bank("A", "0.05", "0.7", "0.6", "0").Validate(), generic.ErrInvalidRecord)
	assert.ErrorIs(t, bank("A", "0.05", "0", "1", "-0.01").Validate(), generic.ErrInvalidRecord)
	assert.ErrorIs(t, bank("", "0.05", "0", "1", "0").Validate(), generic.ErrInvalidRecord)
}

func TestPortfolio_Validate(t *testing.T) {
	// A deposit at an unknown bank is left to the advisor
	p := &deposit.Portfolio{
		Banks:    []deposit.Bank{bank("A", "0.05", "0", "1", "0")},
		Deposits: []deposit.Deposit{yearDeposit("d1", "Ghost", "1000", "0.05")},
	}
	require.NoError(t, p.Validate())

	p.Deposits = append(p.Deposits, yearDeposit("d2", "A", "-5", "0.05"))
	assert.ErrorIs(t, p.Validate(), generic.ErrInvalidRecord)

	p.Deposits = p.Deposits[:1]
	p.Banks = append(p.Banks, bank("B", "0.05", "0.9", "0.1", "0"))
	assert.ErrorIs(t, p.Validate(), generic.ErrInvalidRecord)
}

func TestActive(t *testing.T) {
	open := yearDeposit("open", "A", "1", "0.05")
	closed := yearDeposit("closed", "A", "1", "0.05")
	closed.Status = deposit.StatusClosed

	active := deposit.Active([]deposit.Deposit{closed, open})

	require.Len(t, active, 1)
	assert.Equal(t, "open", active[0].ID)
}

func TestAllocation_PerBank(t *testing.T) {
	alloc := deposit.Allocation([]deposit.Deposit{
		yearDeposit("1", "A", "100", "0.05"),
		yearDeposit("2", "B", "300", "0.05"),
		yearDeposit("3", "A", "100", "0.05"),
	})

	assert.True(t, alloc.Held("A").Equal(dec("200")))
	assert.True(t, alloc.Total.Equal(dec("500")))
	assert.InDelta(t, 0.6, alloc.Share("B").InexactFloat64(), 1e-12)
}
