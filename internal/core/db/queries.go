package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"

	"github.com/solatis/roundsapi/internal/metrics"
	"github.com/solatis/roundsapi/internal/types"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Queries provides access to named SQL queries loaded from embedded .sql files.
// Uses dotsql for named query management and sqlx for database operations.
// Statements use `?` placeholders and are rebound for the active driver.
type Queries struct {
	dot     *dotsql.DotSql
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// Option configures Queries.
type Option func(*Queries)

// WithMetrics records the duration of every statement.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queries) {
		q.metrics = m
	}
}

// LoadQueries loads all .sql files from embedded filesystem and returns Queries instance.
// Named queries accessible by name (e.g., "search-challenges", "insert-contest").
func LoadQueries(db *sqlx.DB, opts ...Option) (*Queries, error) {
	var combinedSQL string

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}

		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		combinedSQL += string(content) + "\n"
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combinedSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	q := &Queries{dot: dot, db: db}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// DB returns the underlying connection pool.
func (q *Queries) DB() *sqlx.DB {
	return q.db
}

// Raw returns the text of a named query.
func (q *Queries) Raw(name string) (string, error) {
	query, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	return query, nil
}

// Ping verifies the store is reachable. Failure is reported as unavailable.
func (q *Queries) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return types.Unavailable(err)
	}
	return nil
}

// GetContext runs a composed statement and scans a single row into dest.
func (q *Queries) GetContext(ctx context.Context, dest any, query string, args ...any) (err error) {
	done := q.observe(ctx, time.Now())
	defer func() { done(err) }()
	return q.db.GetContext(ctx, dest, q.db.Rebind(query), args...)
}

// SelectContext runs a composed statement and scans all rows into dest.
func (q *Queries) SelectContext(ctx context.Context, dest any, query string, args ...any) (err error) {
	done := q.observe(ctx, time.Now())
	defer func() { done(err) }()
	return q.db.SelectContext(ctx, dest, q.db.Rebind(query), args...)
}

// Exec executes a named query with placeholder conversion for database compatibility.
// Uses sqlx Rebind to convert ? placeholders to $1, $2 for PostgreSQL.
func (q *Queries) Exec(ctx context.Context, name string, args ...any) (res sql.Result, err error) {
	query, err := q.Raw(name)
	if err != nil {
		return nil, err
	}
	done := q.observe(metrics.WithQuery(ctx, name), time.Now())
	defer func() { done(err) }()
	return q.db.ExecContext(ctx, q.db.Rebind(query), args...)
}

// Get retrieves a single row into dest struct using named query.
func (q *Queries) Get(ctx context.Context, name string, dest any, args ...any) (err error) {
	query, err := q.Raw(name)
	if err != nil {
		return err
	}
	done := q.observe(metrics.WithQuery(ctx, name), time.Now())
	defer func() { done(err) }()
	return q.db.GetContext(ctx, dest, q.db.Rebind(query), args...)
}

// Select retrieves multiple rows into dest slice using named query.
func (q *Queries) Select(ctx context.Context, name string, dest any, args ...any) (err error) {
	query, err := q.Raw(name)
	if err != nil {
		return err
	}
	done := q.observe(metrics.WithQuery(ctx, name), time.Now())
	defer func() { done(err) }()
	return q.db.SelectContext(ctx, dest, q.db.Rebind(query), args...)
}

// Exists runs a named COUNT(*) query and reports whether it matched.
func (q *Queries) Exists(ctx context.Context, name string, args ...any) (bool, error) {
	var n int64
	if err := q.Get(ctx, name, &n, args...); err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return n > 0, nil
}

// Tx is a transaction with named query access.
type Tx struct {
	q  *Queries
	tx *sqlx.Tx
}

// Exec executes a named query inside the transaction.
func (t *Tx) Exec(ctx context.Context, name string, args ...any) (sql.Result, error) {
	query, err := t.q.Raw(name)
	if err != nil {
		return nil, err
	}
	return t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
}

// Get retrieves a single row inside the transaction.
func (t *Tx) Get(ctx context.Context, name string, dest any, args ...any) error {
	query, err := t.q.Raw(name)
	if err != nil {
		return err
	}
	return t.tx.GetContext(ctx, dest, t.tx.Rebind(query), args...)
}

// InTx runs fn inside a transaction, committing when fn succeeds and
// rolling back otherwise.
func (q *Queries) InTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&Tx{q: q, tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// observe starts timing a statement; the returned func records it.
func (q *Queries) observe(ctx context.Context, start time.Time) func(error) {
	return func(err error) {
		q.metrics.RecordQuery(metrics.QueryFrom(ctx), time.Since(start), err)
	}
}
