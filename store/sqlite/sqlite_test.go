package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testBank(name, rate string) deposit.Bank {
	return deposit.Bank{
		Name:        name,
		Rate:        decimal.RequireFromString(rate),
		Capacity:    generic.Capacity{Min: decimal.Zero, Max: decimal.RequireFromString("0.5")},
		Commission:  decimal.RequireFromString("0.01"),
		PayStrategy: generic.PayCapitalization,
	}
}

func testDeposit(id, bank string, open generic.TimePoint) deposit.Deposit {
	return deposit.Deposit{
		ID:          id,
		Bank:        bank,
		Name:        "deposit " + id,
		Open:        open,
		Close:       open.AddMonths(6),
		Amount:      decimal.RequireFromString("100000.50"),
		Rate:        decimal.RequireFromString("0.075"),
		Status:      deposit.StatusActive,
		PayStrategy: generic.PayOnce,
	}
}

// =============================================================================
// BANKS
// =============================================================================

func TestStore_Bank_RoundTripsDecimalsExactly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bank := testBank("Alpha", "0.0815")
	require.NoError(t, store.SaveBank(ctx, bank))

	got, err := store.GetBank(ctx, "Alpha")
	require.NoError(t, err)
	assert.True(t, got.Rate.Equal(bank.Rate))
	assert.True(t, got.Capacity.Max.Equal(bank.Capacity.Max))
	assert.True(t, got.Commission.Equal(bank.Commission))
	assert.Equal(t, generic.PayCapitalization, got.PayStrategy)
}

func TestStore_SaveBank_Upserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBank(ctx, testBank("Alpha", "0.05")))
	require.NoError(t, store.SaveBank(ctx, testBank("Alpha", "0.06")))

	banks, err := store.ListBanks(ctx)
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "0.06", banks[0].Rate.String())
}

func TestStore_MissingBank_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetBank(ctx, "Nope")
	assert.ErrorIs(t, err, generic.ErrBankNotFound)
	assert.ErrorIs(t, store.DeleteBank(ctx, "Nope"), generic.ErrBankNotFound)
}

// =============================================================================
// DEPOSITS
// =============================================================================

func TestStore_Deposit_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	d := testDeposit("d-1", "Alpha", generic.NewTimePoint(2025, time.January, 31))
	require.NoError(t, store.SaveDeposit(ctx, d))

	got, err := store.GetDeposit(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Bank)
	assert.True(t, got.Open.Equal(d.Open))
	assert.True(t, got.Close.Equal(d.Close))
	assert.True(t, got.Amount.Equal(d.Amount))
	assert.Equal(t, deposit.StatusActive, got.Status)

	require.NoError(t, store.DeleteDeposit(ctx, "d-1"))
	_, err = store.GetDeposit(ctx, "d-1")
	assert.ErrorIs(t, err, generic.ErrDepositNotFound)
}

func TestStore_Deposit_KeepsTimeOfDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	d := testDeposit("d-1", "Alpha", generic.NewTimePointAt(2025, time.March, 3, 14, 5, 0))
	require.NoError(t, store.SaveDeposit(ctx, d))

	got, err := store.GetDeposit(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03T14:05:00", got.Open.String())
}

func TestStore_ListDeposits_InsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDeposit(ctx, testDeposit("b", "Alpha", generic.NewTimePoint(2025, time.May, 1))))
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("a", "Alpha", generic.NewTimePoint(2025, time.February, 1))))
	// an update keeps its place
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("b", "Beta", generic.NewTimePoint(2025, time.May, 1))))

	deposits, err := store.ListDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, 2)
	assert.Equal(t, "b", deposits[0].ID)
	assert.Equal(t, "Beta", deposits[0].Bank)
	assert.Equal(t, "a", deposits[1].ID)
}

func TestStore_DepositAtUnknownBank_IsLoadable(t *testing.T) {
	// The advisor has to see the broken reference to report it.
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDeposit(ctx, testDeposit("d-1", "Ghost", generic.NewTimePoint(2025, time.May, 1))))

	deposits, err := store.ListDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, deposits, 1)
}

// =============================================================================
// BULK
// =============================================================================

func TestStore_ReplaceAll_SwapsPortfolio(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBank(ctx, testBank("Old", "0.01")))
	require.NoError(t, store.SaveDeposit(ctx, testDeposit("old", "Old", generic.NewTimePoint(2024, time.May, 1))))

	err := store.ReplaceAll(ctx,
		[]deposit.Bank{testBank("Alpha", "0.05"), testBank("Beta", "0.07")},
		[]deposit.Deposit{testDeposit("new", "Beta", generic.NewTimePoint(2025, time.May, 1))},
	)
	require.NoError(t, err)

	portfolio, err := deposit.LoadPortfolio(ctx, store)
	require.NoError(t, err)
	assert.Len(t, portfolio.Banks, 2)
	require.Len(t, portfolio.Deposits, 1)
	assert.Equal(t, "new", portfolio.Deposits[0].ID)
}

func TestStore_ReplaceAll_KeepsInputOrderForRateTies(t *testing.T) {
	// GIVEN: Two banks paying the same rate, imported Yankee before Xray
	store := newTestStore(t)
	ctx := context.Background()

	open := func(name, rate string) deposit.Bank {
		b := testBank(name, rate)
		b.Capacity.Max = decimal.NewFromInt(1)
		b.Commission = decimal.Zero
		return b
	}
	banks := []deposit.Bank{open("Zeta", "0.03"), open("Yankee", "0.08"), open("Xray", "0.08")}
	d := testDeposit("d-1", "Zeta", generic.NewTimePoint(2025, time.January, 1))
	d.Rate = decimal.RequireFromString("0.03")
	require.NoError(t, store.ReplaceAll(ctx, banks, []deposit.Deposit{d}))

	// WHEN: The portfolio is read back and advised on
	portfolio, err := deposit.LoadPortfolio(ctx, store)
	require.NoError(t, err)

	advisor := deposit.NewAdvisor(zerolog.Nop())
	advisor.Now = func() generic.TimePoint { return d.Open }
	fromStore, err := advisor.SuggestReallocations(deposit.Active(portfolio.Deposits), portfolio.Banks)
	require.NoError(t, err)
	fromInput, err := advisor.SuggestReallocations([]deposit.Deposit{d}, banks)
	require.NoError(t, err)

	// THEN: Same order as imported, so the same target bank
	require.Len(t, portfolio.Banks, 3)
	assert.Equal(t, []string{"Zeta", "Yankee", "Xray"},
		[]string{portfolio.Banks[0].Name, portfolio.Banks[1].Name, portfolio.Banks[2].Name})
	require.Len(t, fromStore.Suggestions, 1)
	require.Len(t, fromInput.Suggestions, 1)
	assert.Equal(t, "Yankee", fromInput.Suggestions[0].ToBank)
	assert.Equal(t, fromInput.Suggestions[0].ToBank, fromStore.Suggestions[0].ToBank)
}

func TestStore_SaveBank_NewGoesLast(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, []deposit.Bank{testBank("Zeta", "0.01"), testBank("Alpha", "0.02")}, nil))
	require.NoError(t, store.SaveBank(ctx, testBank("Beta", "0.03")))
	require.NoError(t, store.SaveBank(ctx, testBank("Zeta", "0.04")))

	banks, err := store.ListBanks(ctx)
	require.NoError(t, err)
	require.Len(t, banks, 3)
	assert.Equal(t, "Zeta", banks[0].Name)
	assert.Equal(t, "0.04", banks[0].Rate.String())
	assert.Equal(t, "Alpha", banks[1].Name)
	assert.Equal(t, "Beta", banks[2].Name)
}

func TestStore_LastModified(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	modified, err := store.LastModified(ctx)
	require.NoError(t, err)
	assert.True(t, modified.IsZero(), "empty store was never written")

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, store.SaveBank(ctx, testBank("Alpha", "0.05")))

	modified, err = store.LastModified(ctx)
	require.NoError(t, err)
	assert.False(t, modified.Before(before.Truncate(time.Second)))

	require.NoError(t, store.Reset(ctx))
	modified, err = store.LastModified(ctx)
	require.NoError(t, err)
	assert.True(t, modified.IsZero())
}
