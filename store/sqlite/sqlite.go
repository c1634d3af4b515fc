/*
Package sqlite provides a SQLite-backed implementation of deposit.Store.

PURPOSE:
  Persists the portfolio input records: banks and deposits. Nothing the
  engine computes is stored here.

KEY TABLES:
  banks:          One row per bank, keyed by name
  deposits:       One row per deposit, keyed by ID
  portfolio_meta: Single row holding the time of the last write

  deposits.bank is deliberately not a foreign key: a deposit pointing at an
  unknown bank must be loadable so the advisor can report it.

ORDERING:
  banks.position and deposits.position keep insertion order. ReplaceAll
  writes records in slice order, so a portfolio reads back exactly as it
  was imported; the advisor breaks rate ties by that order. Upserts keep
  the position of the existing row.

VALUE ENCODING:
  Decimals are stored as TEXT (decimal.String) to keep them exact.
  Open/close dates are stored as "2006-01-02" or "2006-01-02T15:04:05".
  Bookkeeping timestamps are RFC3339 UTC.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode.

USAGE:
  store, err := sqlite.New("./deposits.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - deposit/store.go: Interface definition
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
)

// Store implements deposit.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ deposit.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every :memory: connection is a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS banks (
		name TEXT PRIMARY KEY,
		rate TEXT NOT NULL,
		min_capacity TEXT NOT NULL,
		max_capacity TEXT NOT NULL,
		transfer_commission TEXT NOT NULL,
		pay_strategy TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deposits (
		id TEXT PRIMARY KEY,
		bank TEXT NOT NULL,
		name TEXT NOT NULL,
		date_open TEXT NOT NULL,
		date_close TEXT NOT NULL,
		amount TEXT NOT NULL,
		rate TEXT NOT NULL,
		status TEXT NOT NULL,
		pay_strategy TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deposits_bank
		ON deposits(bank);
	CREATE INDEX IF NOT EXISTS idx_deposits_status_close
		ON deposits(status, date_close);

	CREATE TABLE IF NOT EXISTS portfolio_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		updated_at TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	// databases created before positions existed
	for _, table := range []string{"banks", "deposits"} {
		if err := s.addColumnIfMissing(table, "position", "INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) addColumnIfMissing(table, column, definition string) error {
	rows, err := s.db.Query(fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", table))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// BANKS
// =============================================================================

// SaveBank inserts or updates a bank by name.
func (s *Store) SaveBank(ctx context.Context, b deposit.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := saveBank(ctx, s.db, b); err != nil {
		return err
	}
	return touch(ctx, s.db)
}

func saveBank(ctx context.Context, db execer, b deposit.Bank) error {
	query := `
		INSERT INTO banks (name, rate, min_capacity, max_capacity, transfer_commission, pay_strategy, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM banks), ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			rate = excluded.rate,
			min_capacity = excluded.min_capacity,
			max_capacity = excluded.max_capacity,
			transfer_commission = excluded.transfer_commission,
			pay_strategy = excluded.pay_strategy,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, query,
		b.Name, b.Rate.String(), b.Capacity.Min.String(), b.Capacity.Max.String(),
		b.Commission.String(), string(b.PayStrategy), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save bank %q: %w", b.Name, err)
	}
	return nil
}

// GetBank retrieves a bank by name.
func (s *Store) GetBank(ctx context.Context, name string) (*deposit.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT name, rate, min_capacity, max_capacity, transfer_commission, pay_strategy FROM banks WHERE name = ?",
		name,
	)
	b, err := scanBank(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrBankNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBanks returns all banks in insertion order.
func (s *Store) ListBanks(ctx context.Context) ([]deposit.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, rate, min_capacity, max_capacity, transfer_commission, pay_strategy FROM banks ORDER BY position, name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []deposit.Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// DeleteBank removes a bank. Deposits at the bank are kept.
func (s *Store) DeleteBank(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM banks WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrBankNotFound, name)
	}
	return touch(ctx, s.db)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBank(row scanner) (deposit.Bank, error) {
	var b deposit.Bank
	var rate, minCap, maxCap, commission, strategy string
	if err := row.Scan(&b.Name, &rate, &minCap, &maxCap, &commission, &strategy); err != nil {
		return deposit.Bank{}, err
	}

	var err error
	if b.Rate, err = decimal.NewFromString(rate); err != nil {
		return deposit.Bank{}, fmt.Errorf("bank %q rate: %w", b.Name, err)
	}
	if b.Capacity.Min, err = decimal.NewFromString(minCap); err != nil {
		return deposit.Bank{}, fmt.Errorf("bank %q min capacity: %w", b.Name, err)
	}
	if b.Capacity.Max, err = decimal.NewFromString(maxCap); err != nil {
		return deposit.Bank{}, fmt.Errorf("bank %q max capacity: %w", b.Name, err)
	}
	if b.Commission, err = decimal.NewFromString(commission); err != nil {
		return deposit.Bank{}, fmt.Errorf("bank %q commission: %w", b.Name, err)
	}
	if b.PayStrategy, err = generic.ParsePayStrategy(strategy); err != nil {
		return deposit.Bank{}, err
	}
	return b, nil
}

// =============================================================================
// DEPOSITS
// =============================================================================

// SaveDeposit inserts or updates a deposit by ID.
func (s *Store) SaveDeposit(ctx context.Context, d deposit.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := saveDeposit(ctx, s.db, d); err != nil {
		return err
	}
	return touch(ctx, s.db)
}

func saveDeposit(ctx context.Context, db execer, d deposit.Deposit) error {
	query := `
		INSERT INTO deposits (id, bank, name, date_open, date_close, amount, rate, status, pay_strategy, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM deposits), ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			bank = excluded.bank,
			name = excluded.name,
			date_open = excluded.date_open,
			date_close = excluded.date_close,
			amount = excluded.amount,
			rate = excluded.rate,
			status = excluded.status,
			pay_strategy = excluded.pay_strategy,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, query,
		d.ID, d.Bank, d.Name, d.Open.String(), d.Close.String(),
		d.Amount.String(), d.Rate.String(), string(d.Status), string(d.PayStrategy),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save deposit %q: %w", d.ID, err)
	}
	return nil
}

const depositColumns = "id, bank, name, date_open, date_close, amount, rate, status, pay_strategy"

// GetDeposit retrieves a deposit by ID.
func (s *Store) GetDeposit(ctx context.Context, id string) (*deposit.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+depositColumns+" FROM deposits WHERE id = ?", id)
	d, err := scanDeposit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrDepositNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDeposits returns all deposits in insertion order.
func (s *Store) ListDeposits(ctx context.Context) ([]deposit.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+depositColumns+" FROM deposits ORDER BY position, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []deposit.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// DeleteDeposit removes a deposit.
func (s *Store) DeleteDeposit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM deposits WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrDepositNotFound, id)
	}
	return touch(ctx, s.db)
}

func scanDeposit(row scanner) (deposit.Deposit, error) {
	var d deposit.Deposit
	var open, closeAt, amount, rate, status, strategy string
	if err := row.Scan(&d.ID, &d.Bank, &d.Name, &open, &closeAt, &amount, &rate, &status, &strategy); err != nil {
		return deposit.Deposit{}, err
	}

	var err error
	if d.Open, err = generic.ParseTimePoint(open); err != nil {
		return deposit.Deposit{}, fmt.Errorf("deposit %q: %w", d.ID, err)
	}
	if d.Close, err = generic.ParseTimePoint(closeAt); err != nil {
		return deposit.Deposit{}, fmt.Errorf("deposit %q: %w", d.ID, err)
	}
	if d.Amount, err = decimal.NewFromString(amount); err != nil {
		return deposit.Deposit{}, fmt.Errorf("deposit %q amount: %w", d.ID, err)
	}
	if d.Rate, err = decimal.NewFromString(rate); err != nil {
		return deposit.Deposit{}, fmt.Errorf("deposit %q rate: %w", d.ID, err)
	}
	if d.Status, err = deposit.ParseStatus(status); err != nil {
		return deposit.Deposit{}, err
	}
	if d.PayStrategy, err = generic.ParsePayStrategy(strategy); err != nil {
		return deposit.Deposit{}, err
	}
	return d, nil
}

// =============================================================================
// BULK OPERATIONS
// =============================================================================

// ReplaceAll swaps the whole portfolio in one transaction.
func (s *Store) ReplaceAll(ctx context.Context, banks []deposit.Bank, deposits []deposit.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearAll(ctx, tx); err != nil {
		return err
	}
	for _, b := range banks {
		if err := saveBank(ctx, tx, b); err != nil {
			return err
		}
	}
	for _, d := range deposits {
		if err := saveDeposit(ctx, tx, d); err != nil {
			return err
		}
	}
	if err := touch(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := clearAll(ctx, s.db); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM portfolio_meta")
	return err
}

// LastModified returns when the portfolio was last written, or the zero
// time if it never was.
func (s *Store) LastModified(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var updatedAt string
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM portfolio_meta WHERE id = 1").Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, updatedAt)
}

func clearAll(ctx context.Context, db execer) error {
	for _, table := range []string{"deposits", "banks"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func touch(ctx context.Context, db execer) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO portfolio_meta (id, updated_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, time.Now().UTC().Format(time.RFC3339))
	return err
}
