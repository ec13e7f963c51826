// Package dbtest opens throwaway SQLite databases for tests. The databases
// are file-backed in t.TempDir() rather than :memory: so the schema survives
// connection churn.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/TurmaJB/Biblioteca-JB-online/internal/db"
)

// schema mirrors migrations/0001_init.up.sql in SQLite dialect.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    staff_id      TEXT UNIQUE,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    title      TEXT NOT NULL,
    author     TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity >= 0),
    publisher  TEXT NOT NULL,
    subject    TEXT,
    age_rating TEXT NOT NULL CHECK (age_rating IN ('Livre','Infantil','Infantojuvenil','Adulto')),
    image      TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS loans (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    due_date   DATETIME NOT NULL,
    renewals   INTEGER NOT NULL DEFAULT 0,
    account_id INTEGER NOT NULL REFERENCES accounts(id),
    book_id    INTEGER NOT NULL REFERENCES books(id),
    created_at DATETIME NOT NULL
);
`

// Open returns a migrated SQLite handle rooted in t.TempDir(), closed via
// t.Cleanup.
func Open(t *testing.T) *db.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_foreign_keys=1"
	database, err := db.Open(db.Config{
		DriverName: "sqlite3",
		DSN:        dsn,
		// SQLite cannot interleave write transactions; a single pooled
		// connection serializes them instead of failing with SQLITE_BUSY.
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if _, err := database.Exec(context.Background(), schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return database
}
