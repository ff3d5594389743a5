package deepwiki

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store abstracts the database operations needed by the repositories.
// Every method is routed through the retry wrapper by the internal/db
// implementation; retry is a property of the Store, not of individual calls.
//
// Thread-Safety: Implementations backed by a connection pool are safe for
// concurrent use.
type Store interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query executes a query returning multiple rows.
	// The caller must close the returned Rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryRow executes a query expected to return at most one row and
	// scans it into dest. Unlike pgx's deferred-error Row, the scan happens
	// inside the call so that transient failures are visible to the retry
	// wrapper.
	QueryRow(ctx context.Context, sql string, dest []any, args ...any) error

	// InTx runs fn inside a transaction. The whole transaction is one
	// retryable unit: a transient failure rolls back and reruns fn.
	// fn must therefore be safe to execute more than once.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Close releases the underlying pool.
	Close()
}

// Tx exposes statement execution inside a Store transaction.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, dest []any, args ...any) error
}

// Rows is a cursor over a multi-row result. It decouples callers from
// pgx.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Connector establishes the database connection pool behind a Store.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM, etc.).
type Connector interface {
	// Connect establishes a connection pool wrapped in a retrying Store.
	// The returned Store should be closed by the caller when done.
	Connect(ctx context.Context) (Store, error)
}
