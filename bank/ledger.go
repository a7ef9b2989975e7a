// Package bank provides a SQLite-backed implementation of core.Settlement.
package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/cloudx-io/auctionhouse/core"
)

var _ core.Settlement = (*Ledger)(nil)

var (
	ErrUnknownAccount    = errors.New("unknown account")
	ErrDuplicateAccount  = errors.New("account already exists")
	ErrBadAuthCode       = errors.New("authorisation code rejected")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid transfer amount")
)

// Transfer statuses recorded in the journal.
const (
	TransferOK     = "ok"
	TransferFailed = "failed"
)

// TransferRecord is one journal row. Failed attempts are journalled too.
type TransferRecord struct {
	ID          string
	FromAccount string
	ToAccount   string
	Amount      core.Money
	Status      string
	Error       string
	CreatedAt   int64
}

// Ledger holds account balances and a journal of every transfer attempt.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the ledger at dbPath, creating parent directories and the schema.
// The path ":memory:" keeps everything in a single in-memory connection.
func New(dbPath string) (*Ledger, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// Transfers read then write two balances; one connection keeps them serial.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// OpenAccount creates an account with an opening balance. Accounts that allow
// overdraft may go negative; the house account normally does.
func (l *Ledger) OpenAccount(ctx context.Context, account, authCode string, opening core.Money, allowOverdraft bool) error {
	if account == "" {
		return fmt.Errorf("open account: %w: empty name", ErrUnknownAccount)
	}
	var exists int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE account = ?`, account).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("open account %q: %w", account, ErrDuplicateAccount)
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO accounts (account, auth_code, balance_pence, allow_overdraft, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		account, authCode, opening.Pence(), allowOverdraft, l.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// Balance returns the current balance of an account.
func (l *Ledger) Balance(ctx context.Context, account string) (core.Money, error) {
	var pence int64
	err := l.db.QueryRowContext(ctx,
		`SELECT balance_pence FROM accounts WHERE account = ?`, account,
	).Scan(&pence)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Zero, fmt.Errorf("balance %q: %w", account, ErrUnknownAccount)
	}
	if err != nil {
		return core.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return core.MoneyFromPence(pence), nil
}

// Transfer moves amount from one account to another after checking the
// source's authorisation code and funds. Every attempt is journalled.
func (l *Ledger) Transfer(ctx context.Context, fromAccount, fromAuthCode, toAccount string, amount core.Money) error {
	id := uuid.New().String()
	err := l.transfer(ctx, fromAccount, fromAuthCode, toAccount, amount, id)
	if err != nil {
		if jerr := l.journal(ctx, l.db, id, fromAccount, toAccount, amount, TransferFailed, err.Error()); jerr != nil {
			return errors.Join(err, jerr)
		}
		return err
	}
	return nil
}

func (l *Ledger) transfer(ctx context.Context, from, authCode, to string, amount core.Money, id string) error {
	if amount.Compare(core.Zero) < 0 {
		return fmt.Errorf("transfer %s: %w", amount, ErrInvalidAmount)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		storedAuth     string
		balance        int64
		allowOverdraft bool
	)
	err = tx.QueryRowContext(ctx,
		`SELECT auth_code, balance_pence, allow_overdraft FROM accounts WHERE account = ?`, from,
	).Scan(&storedAuth, &balance, &allowOverdraft)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transfer from %q: %w", from, ErrUnknownAccount)
	}
	if err != nil {
		return fmt.Errorf("failed to read source account: %w", err)
	}
	if storedAuth != authCode {
		return fmt.Errorf("transfer from %q: %w", from, ErrBadAuthCode)
	}
	if !allowOverdraft && balance < amount.Pence() {
		return fmt.Errorf("transfer from %q: %w: balance %s, need %s",
			from, ErrInsufficientFunds, core.MoneyFromPence(balance), amount)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_pence = balance_pence + ? WHERE account = ?`, amount.Pence(), to)
	if err != nil {
		return fmt.Errorf("failed to credit account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transfer to %q: %w", to, ErrUnknownAccount)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_pence = balance_pence - ? WHERE account = ?`, amount.Pence(), from); err != nil {
		return fmt.Errorf("failed to debit account: %w", err)
	}

	if err := l.journal(ctx, tx, id, from, to, amount, TransferOK, ""); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (l *Ledger) journal(ctx context.Context, db execer, id, from, to string, amount core.Money, status, reason string) error {
	var errText any
	if reason != "" {
		errText = reason
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO transfers (id, from_account, to_account, amount_pence, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, from, to, amount.Pence(), status, errText, l.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to journal transfer: %w", err)
	}
	return nil
}

// Transfers returns the journal in attempt order.
func (l *Ledger) Transfers(ctx context.Context) ([]TransferRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, from_account, to_account, amount_pence, status, error, created_at
		 FROM transfers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var records []TransferRecord
	for rows.Next() {
		var (
			r      TransferRecord
			pence  int64
			reason sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.FromAccount, &r.ToAccount, &pence, &r.Status, &reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		r.Amount = core.MoneyFromPence(pence)
		if reason.Valid {
			r.Error = reason.String
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
