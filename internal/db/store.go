package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charles1614/deepwiki-sub003/internal/retry"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// pgxConn is the subset of *pgxpool.Pool the Store needs. Tests substitute
// a fake that fails a scripted number of times before succeeding.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

var _ pgxConn = (*pgxpool.Pool)(nil)

// RetryingStore implements deepwiki.Store on top of a pgx connection pool.
// Every operation runs inside the Retrier, so callers never see a transient
// connection failure unless the retry budget is exhausted.
type RetryingStore struct {
	conn    pgxConn
	retrier *retry.Retrier
}

var _ deepwiki.Store = (*RetryingStore)(nil)

// NewRetryingStore wraps conn so that all operations retry on transient
// connection failures according to the retrier's configuration.
func NewRetryingStore(conn pgxConn, retrier *retry.Retrier) *RetryingStore {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if retrier == nil {
		panic("retrier cannot be nil")
	}
	return &RetryingStore{conn: conn, retrier: retrier}
}

// NewPoolStore is the production constructor: a RetryingStore over a pgxpool
// with retry behavior built from opts.
func NewPoolStore(pool *pgxpool.Pool, opts retry.Options, logger deepwiki.Logger) (*RetryingStore, error) {
	retrier, err := retry.New(opts, retry.NewServerClosedClassifier(), logger)
	if err != nil {
		return nil, err
	}
	return NewRetryingStore(pool, retrier), nil
}

func (s *RetryingStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		var opErr error
		tag, opErr = s.conn.Exec(ctx, sql, args...)
		return opErr
	})
	return tag, err
}

// Query retries query issuance. Once rows are handed to the caller,
// iteration errors surface through Rows.Err and are not replayed.
func (s *RetryingStore) Query(ctx context.Context, sql string, args ...any) (deepwiki.Rows, error) {
	var result pgx.Rows
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		rows, opErr := s.conn.Query(ctx, sql, args...)
		if opErr != nil {
			return opErr
		}
		// pgx defers most failures to the first Next call; probing Err
		// here surfaces immediate connection errors to the retrier.
		if opErr = rows.Err(); opErr != nil {
			rows.Close()
			return opErr
		}
		result = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: result}, nil
}

func (s *RetryingStore) QueryRow(ctx context.Context, sql string, dest []any, args ...any) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		return scanOneRow(ctx, s.conn, sql, dest, args)
	})
}

// InTx runs fn inside a transaction. The whole begin/fn/commit sequence is
// one retried unit: a transient failure rolls back and replays fn from the
// start, so fn must tolerate repeated execution.
func (s *RetryingStore) InTx(ctx context.Context, fn func(ctx context.Context, tx deepwiki.Tx) error) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		pgxTx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}

		if err := fn(ctx, &storeTx{tx: pgxTx}); err != nil {
			if rbErr := pgxTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
			}
			return err
		}

		return pgxTx.Commit(ctx)
	})
}

func (s *RetryingStore) Close() {
	s.conn.Close()
}

// queryer is implemented by both pgxConn and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// scanOneRow executes sql and scans the single expected row into dest.
// No row maps to deepwiki.ErrNotFound. Scanning happens eagerly so the
// caller (the retried operation) observes connection failures directly.
func scanOneRow(ctx context.Context, q queryer, sql string, dest []any, args []any) error {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return deepwiki.ErrNotFound
	}
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}

// storeTx adapts pgx.Tx to deepwiki.Tx. Statements inside a transaction are
// not individually retried; a transient failure tears down the whole
// transaction and InTx replays it.
type storeTx struct {
	tx pgx.Tx
}

var _ deepwiki.Tx = (*storeTx)(nil)

func (t *storeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.tx.Exec(ctx, sql, args...)
}

func (t *storeTx) Query(ctx context.Context, sql string, args ...any) (deepwiki.Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (t *storeTx) QueryRow(ctx context.Context, sql string, dest []any, args ...any) error {
	return scanOneRow(ctx, t.tx, sql, dest, args)
}

// pgxRows adapts pgx.Rows to deepwiki.Rows.
type pgxRows struct {
	rows pgx.Rows
}

var _ deepwiki.Rows = (*pgxRows)(nil)

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Err() error             { return r.rows.Err() }
func (r *pgxRows) Close()                 { r.rows.Close() }
