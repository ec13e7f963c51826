// Package db wraps database/sql with the small surface the service layer
// needs: an explicitly constructed handle with pool tuning, context-aware
// query helpers, unified driver-error mapping, structured query logging, and
// transaction management.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Config holds the options for opening and managing the connection pool.
type Config struct {
	// DriverName is "mysql" or "sqlite3".
	DriverName string
	// DSN is the driver-specific data-source name.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// SlowQueryThreshold logs a warning when a statement exceeds it.
	// Zero disables slow-query logging.
	SlowQueryThreshold time.Duration

	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// DB is a concurrency-safe wrapper around *sql.DB. All methods accept a
// context.Context so callers control timeouts and cancellation.
type DB struct {
	sqldb  *sql.DB
	cfg    Config
	logger *slog.Logger
}

// Open opens the database described by cfg and verifies connectivity.
// Callers own the handle lifecycle: opened at process start, closed at
// shutdown.
func Open(cfg Config) (*DB, error) {
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("db: DriverName must not be empty")
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db: DSN must not be empty")
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &DB{sqldb: sqldb, cfg: cfg, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return d, nil
}

// Raw returns the underlying *sql.DB for advanced use cases.
func (d *DB) Raw() *sql.DB { return d.sqldb }

// Close closes all pooled connections. Safe to call multiple times.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error { return d.sqldb.PingContext(ctx) }

// Exec executes a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = MapError(err)
	d.log(ctx, query, time.Since(start), err)
	return res, err
}

// Query executes a query that returns rows. The caller must close them.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = MapError(err)
	d.log(ctx, query, time.Since(start), err)
	return rows, err
}

// QueryRow executes a query expected to return at most one row. Scanning the
// returned *Row yields ErrNotFound when no row matches.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	raw := d.sqldb.QueryRowContext(ctx, query, args...)
	d.log(ctx, query, time.Since(start), nil)
	return &Row{raw: raw}
}

func (d *DB) log(ctx context.Context, query string, dur time.Duration, err error) {
	if err != nil {
		d.logger.ErrorContext(ctx, "db: query error",
			slog.String("query", trimQuery(query)),
			slog.Duration("duration", dur),
			slog.Any("error", err))
		return
	}
	if d.cfg.SlowQueryThreshold > 0 && dur > d.cfg.SlowQueryThreshold {
		d.logger.WarnContext(ctx, "db: slow query",
			slog.String("query", trimQuery(query)),
			slog.Duration("duration", dur))
		return
	}
	d.logger.DebugContext(ctx, "db: query",
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", dur))
}

func trimQuery(q string) string {
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}

// Row wraps *sql.Row and maps errors through the unified error mapper.
type Row struct {
	raw *sql.Row
}

// Scan copies columns from the matched row into dest values.
func (r *Row) Scan(dest ...any) error {
	return MapError(r.raw.Scan(dest...))
}
