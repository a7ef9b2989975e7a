package bank

import "database/sql"

// schema runs on startup to ensure tables exist. Balances are whole pence.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    account TEXT PRIMARY KEY,
    auth_code TEXT NOT NULL,
    balance_pence INTEGER NOT NULL,
    allow_overdraft INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transfers (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    from_account TEXT NOT NULL,
    to_account TEXT NOT NULL,
    amount_pence INTEGER NOT NULL,
    status TEXT NOT NULL,
    error TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transfers_from ON transfers(from_account);
CREATE INDEX IF NOT EXISTS idx_transfers_to ON transfers(to_account);
`

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
