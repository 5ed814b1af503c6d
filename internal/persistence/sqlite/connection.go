package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/example/campus-portal/internal/persistence"
)

// Config holds SQLite connection settings.
type Config struct {
	// DSN is the database file path or a file: URI understood by modernc.org/sqlite.
	DSN string
	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration
	// MaxOpenConns caps open connections. SQLite has a single writer, so the
	// default of 1 serialises writes inside the pool instead of failing with SQLITE_BUSY.
	MaxOpenConns int
}

// DefaultConfig returns the configuration used for a database file at dsn.
func DefaultConfig(dsn string) Config {
	return Config{DSN: dsn, BusyTimeout: 5 * time.Second, MaxOpenConns: 1}
}

// dataSourceName appends the pragmas every connection needs.
func (c Config) dataSourceName() string {
	dsn := c.DSN
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "foreign_keys") {
		dsn += sep + "_pragma=foreign_keys(1)"
		sep = "&"
	}
	if !strings.Contains(dsn, "busy_timeout") && c.BusyTimeout > 0 {
		dsn += fmt.Sprintf("%s_pragma=busy_timeout(%d)", sep, c.BusyTimeout.Milliseconds())
	}
	return dsn
}

// ConnectionPool manages SQLite database connections with transaction support.
type ConnectionPool struct {
	db *sqlx.DB
}

// NewConnectionPool opens and pings a SQLite database.
func NewConnectionPool(ctx context.Context, config Config) (*ConnectionPool, error) {
	if strings.TrimSpace(config.DSN) == "" {
		return nil, errors.New("sqlite: DSN is required")
	}
	db, err := sqlx.Open("sqlite", config.dataSourceName())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return &ConnectionPool{db: db}, nil
}

// DB returns the underlying database handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db.DB
}

// Close closes the connection pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

type txKey struct{}

// WithinTransaction executes fn within a database transaction carried by the
// context handed to fn. Nested calls join the outer transaction. If fn returns
// an error or panics the transaction is rolled back.
func (cp *ConnectionPool) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := cp.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ext returns the transaction bound to ctx, or the pool itself.
func (cp *ConnectionPool) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return cp.db
}

// QueryHelper runs queries against the pool or the context's transaction and
// maps driver errors to persistence errors.
type QueryHelper struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewQueryHelper creates a new query helper.
func NewQueryHelper(pool *ConnectionPool) *QueryHelper {
	return &QueryHelper{pool: pool, mapper: NewErrorMapper()}
}

// Get scans a single row into dest.
func (qh *QueryHelper) Get(ctx context.Context, dest any, query string, args ...any) error {
	return qh.mapper.MapError(sqlx.GetContext(ctx, qh.pool.ext(ctx), dest, query, args...))
}

// Select scans all rows into dest, which must be a pointer to a slice.
func (qh *QueryHelper) Select(ctx context.Context, dest any, query string, args ...any) error {
	return qh.mapper.MapError(sqlx.SelectContext(ctx, qh.pool.ext(ctx), dest, query, args...))
}

// Exec executes a statement that doesn't return rows.
func (qh *QueryHelper) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := qh.pool.ext(ctx).ExecContext(ctx, query, args...)
	return result, qh.mapper.MapError(err)
}

// ExecAffecting executes a statement and reports persistence.ErrNotFound when
// it touched no rows.
func (qh *QueryHelper) ExecAffecting(ctx context.Context, query string, args ...any) error {
	result, err := qh.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ErrorMapper maps SQLite errors to persistence layer errors.
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps SQLite-specific errors to persistence layer errors.
func (em *ErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKeyViolation, err)
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}
