package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Tx mirrors the DB query surface so repository code can accept either
// through the Querier interface.
type Tx struct {
	sqltx  *sql.Tx
	parent *DB
}

// Raw returns the underlying *sql.Tx for advanced use.
func (t *Tx) Raw() *sql.Tx { return t.sqltx }

// Exec executes a statement that does not return rows.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.sqltx.ExecContext(ctx, query, args...)
	err = MapError(err)
	t.parent.log(ctx, query, time.Since(start), err)
	return res, err
}

// Query executes a query returning rows. The caller must close them.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.sqltx.QueryContext(ctx, query, args...)
	err = MapError(err)
	t.parent.log(ctx, query, time.Since(start), err)
	return rows, err
}

// QueryRow executes a query expected to return at most one row.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	raw := t.sqltx.QueryRowContext(ctx, query, args...)
	t.parent.log(ctx, query, time.Since(start), nil)
	return &Row{raw: raw}
}

// ExecTx starts a transaction, executes fn, and commits on success or rolls
// back on error or panic. The *Tx satisfies Querier, so repositories work
// unchanged inside fn.
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqltx, err := d.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return MapError(err)
	}

	tx := &Tx{sqltx: sqltx, parent: d}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				err = fmt.Errorf("db: rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = sqltx.Commit(); err != nil {
		return MapError(err)
	}
	return nil
}

// Querier is the minimal query surface shared by *DB and *Tx. Repositories
// accept Querier so they run inside or outside transactions unchanged.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Tx)(nil)
)
