package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// recordingLogger captures Info lines so tests can assert on retry logging.
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Verbose(format string, args ...interface{}) {}
func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Error(format string, args ...interface{}) {}

// recordingSleep captures requested delays without actually sleeping.
func recordingSleep(delays *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func serverClosedErr() error {
	return &pgconn.PgError{Code: AdminShutdownCode, Message: "terminating connection due to administrator command"}
}

// mockOperation tracks invocation count and fails until a given attempt.
type mockOperation struct {
	invocations int
	failUntil   int // fail for invocations < failUntil
	err         error
}

func (m *mockOperation) execute(ctx context.Context) error {
	m.invocations++
	if m.invocations < m.failUntil {
		return m.err
	}
	return nil
}

func newTestRetrier(t *testing.T, opts Options, logger *recordingLogger, delays *[]time.Duration) *Retrier {
	t.Helper()
	r, err := New(opts, NewServerClosedClassifier(), logger, WithSleepFunc(recordingSleep(delays)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return r
}

func TestRetrier_SuccessOnFirstAttempt(t *testing.T) {
	logger := &recordingLogger{}
	var delays []time.Duration
	r := newTestRetrier(t, DefaultOptions(), logger, &delays)

	op := &mockOperation{failUntil: 1}
	if err := r.Do(context.Background(), op.execute); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("expected 1 invocation, got %d", op.invocations)
	}
	if len(logger.lines) != 0 {
		t.Errorf("expected no retry log lines, got %v", logger.lines)
	}
	if len(delays) != 0 {
		t.Errorf("expected no backoff sleeps, got %v", delays)
	}
}

func TestRetrier_SuccessAfterRetries(t *testing.T) {
	logger := &recordingLogger{}
	var delays []time.Duration
	r := newTestRetrier(t, Options{MaxRetries: 3, BackoffEnabled: true, BackoffMin: 5 * time.Millisecond, BackoffMax: 30 * time.Millisecond}, logger, &delays)

	// Fail attempts 1-3 with the transient code, succeed on attempt 4.
	op := &mockOperation{failUntil: 4, err: serverClosedErr()}
	if err := r.Do(context.Background(), op.execute); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if op.invocations != 4 {
		t.Errorf("expected 4 invocations, got %d", op.invocations)
	}

	expectedLines := []string{"Retrying (1/3)", "Retrying (2/3)", "Retrying (3/3)"}
	if len(logger.lines) != len(expectedLines) {
		t.Fatalf("expected %d retry log lines, got %d: %v", len(expectedLines), len(logger.lines), logger.lines)
	}
	for i, want := range expectedLines {
		if logger.lines[i] != want {
			t.Errorf("log line %d: expected %q, got %q", i, want, logger.lines[i])
		}
	}

	if len(delays) != 3 {
		t.Fatalf("expected 3 backoff sleeps, got %d", len(delays))
	}
	for i, d := range delays {
		if d < 5*time.Millisecond || d > 30*time.Millisecond {
			t.Errorf("sleep %d: delay %v outside [5ms, 30ms]", i, d)
		}
	}
}

func TestRetrier_ExhaustedRetries(t *testing.T) {
	logger := &recordingLogger{}
	var delays []time.Duration
	r := newTestRetrier(t, Options{MaxRetries: 3, BackoffEnabled: true, BackoffMin: time.Millisecond, BackoffMax: time.Millisecond}, logger, &delays)

	op := &mockOperation{failUntil: 999, err: serverClosedErr()}
	err := r.Do(context.Background(), op.execute)
	if err == nil {
		t.Fatal("expected error after exhausted retries, got nil")
	}

	if !errors.Is(err, ErrRetryLimitExceeded) {
		t.Errorf("expected ErrRetryLimitExceeded, got %v", err)
	}
	var limitErr *RetryLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected *RetryLimitError, got %T", err)
	}
	if limitErr.Attempts != 4 {
		t.Errorf("expected 4 attempts recorded, got %d", limitErr.Attempts)
	}

	// 1 initial + 3 retries
	if op.invocations != 4 {
		t.Errorf("expected 4 invocations, got %d", op.invocations)
	}

	// The driver error stays reachable through the wrapper.
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != AdminShutdownCode {
		t.Errorf("expected wrapped PgError %s, got %v", AdminShutdownCode, err)
	}
}

func TestRetrier_AttemptCounts(t *testing.T) {
	// For all N >= 0: an always-transient operation runs exactly N+1 times.
	for _, maxRetries := range []int{0, 1, 2, 3, 7} {
		t.Run(fmt.Sprintf("maxRetries=%d", maxRetries), func(t *testing.T) {
			logger := &recordingLogger{}
			var delays []time.Duration
			r := newTestRetrier(t, Options{MaxRetries: maxRetries, BackoffEnabled: false}, logger, &delays)

			op := &mockOperation{failUntil: 999, err: serverClosedErr()}
			err := r.Do(context.Background(), op.execute)

			if !errors.Is(err, ErrRetryLimitExceeded) {
				t.Errorf("expected ErrRetryLimitExceeded, got %v", err)
			}
			if op.invocations != maxRetries+1 {
				t.Errorf("expected %d invocations, got %d", maxRetries+1, op.invocations)
			}
			if len(logger.lines) != maxRetries {
				t.Errorf("expected %d retry log lines, got %d", maxRetries, len(logger.lines))
			}
			if len(delays) != 0 {
				t.Errorf("backoff disabled: expected no sleeps, got %v", delays)
			}
		})
	}
}

func TestRetrier_ZeroMaxRetriesFailsWithLimitError(t *testing.T) {
	// Documented behavior: maxRetries = 0 surfaces RetryLimitExceeded on the
	// very first transient failure, not the driver error.
	logger := &recordingLogger{}
	var delays []time.Duration
	r := newTestRetrier(t, Options{MaxRetries: 0, BackoffEnabled: true, BackoffMin: time.Millisecond, BackoffMax: time.Millisecond}, logger, &delays)

	op := &mockOperation{failUntil: 999, err: serverClosedErr()}
	err := r.Do(context.Background(), op.execute)

	if !errors.Is(err, ErrRetryLimitExceeded) {
		t.Fatalf("expected ErrRetryLimitExceeded, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("expected exactly 1 invocation, got %d", op.invocations)
	}
	if len(delays) != 0 {
		t.Errorf("expected no backoff before the first attempt, got %v", delays)
	}
}

func TestRetrier_FatalErrorNoRetry(t *testing.T) {
	logger := &recordingLogger{}
	var delays []time.Duration
	r := newTestRetrier(t, DefaultOptions(), logger, &delays)

	// Unique-constraint violation: never retried.
	fatal := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	op := &mockOperation{failUntil: 999, err: fatal}

	err := r.Do(context.Background(), op.execute)
	if err != fatal {
		t.Errorf("expected the original error unchanged, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("expected 1 invocation, got %d", op.invocations)
	}
	if errors.Is(err, ErrRetryLimitExceeded) {
		t.Error("fatal error must not match ErrRetryLimitExceeded")
	}
	if len(logger.lines) != 0 {
		t.Errorf("expected no retry log lines, got %v", logger.lines)
	}
}

func TestRetrier_TransientThenFatal(t *testing.T) {
	logger := &recordingLogger{}
	var delays []time.Duration
	r := newTestRetrier(t, Options{MaxRetries: 5, BackoffEnabled: false}, logger, &delays)

	fatal := &pgconn.PgError{Code: "42601", Message: "syntax error"}
	invocations := 0
	op := func(ctx context.Context) error {
		invocations++
		if invocations < 3 {
			return serverClosedErr()
		}
		return fatal
	}

	err := r.Do(context.Background(), op)
	if err != fatal {
		t.Errorf("expected fatal error, got %v", err)
	}
	if invocations != 3 {
		t.Errorf("expected 3 invocations (2 transient + 1 fatal), got %d", invocations)
	}
}

func TestRetrier_FixedDelayWhenMinEqualsMax(t *testing.T) {
	logger := &recordingLogger{}
	var delays []time.Duration
	const fixed = 7 * time.Millisecond
	r := newTestRetrier(t, Options{MaxRetries: 4, BackoffEnabled: true, BackoffMin: fixed, BackoffMax: fixed}, logger, &delays)

	op := &mockOperation{failUntil: 999, err: serverClosedErr()}
	_ = r.Do(context.Background(), op.execute)

	if len(delays) != 4 {
		t.Fatalf("expected 4 sleeps, got %d", len(delays))
	}
	for i, d := range delays {
		if d != fixed {
			t.Errorf("sleep %d: expected fixed delay %v, got %v", i, fixed, d)
		}
	}
}

func TestRetrier_DelayBoundsInclusive(t *testing.T) {
	logger := &recordingLogger{}
	var delays []time.Duration

	// Drive the random source to both extremes: 0 hits BackoffMin, span
	// hits BackoffMax.
	calls := 0
	rigged := func(n int64) int64 {
		calls++
		if calls%2 == 1 {
			return 0
		}
		return n - 1
	}

	r, err := New(
		Options{MaxRetries: 4, BackoffEnabled: true, BackoffMin: 5 * time.Millisecond, BackoffMax: 30 * time.Millisecond},
		NewServerClosedClassifier(),
		logger,
		WithSleepFunc(recordingSleep(&delays)),
		WithRandInt64(rigged),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	op := &mockOperation{failUntil: 999, err: serverClosedErr()}
	_ = r.Do(context.Background(), op.execute)

	if len(delays) != 4 {
		t.Fatalf("expected 4 sleeps, got %d", len(delays))
	}
	want := []time.Duration{5 * time.Millisecond, 30 * time.Millisecond, 5 * time.Millisecond, 30 * time.Millisecond}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("sleep %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestRetrier_ContextCancelledDuringBackoff(t *testing.T) {
	logger := &recordingLogger{}
	r, err := New(
		Options{MaxRetries: 10, BackoffEnabled: true, BackoffMin: time.Second, BackoffMax: time.Second},
		NewServerClosedClassifier(),
		logger,
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	op := &mockOperation{failUntil: 999, err: serverClosedErr()}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err = r.Do(ctx, op.execute)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("expected 1 invocation before cancellation, got %d", op.invocations)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "min greater than max", opts: Options{MaxRetries: 3, BackoffEnabled: true, BackoffMin: 31 * time.Millisecond, BackoffMax: 30 * time.Millisecond}},
		{name: "negative max retries", opts: Options{MaxRetries: -1}},
		{name: "negative backoff min", opts: Options{BackoffMin: -time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.opts, NewServerClosedClassifier(), nil)
			if err == nil {
				t.Fatal("expected configuration error, got nil")
			}
			if !errors.Is(err, deepwiki.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if r != nil {
				t.Error("expected nil Retrier on configuration error")
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.MaxRetries != 3 {
		t.Errorf("expected MaxRetries 3, got %d", opts.MaxRetries)
	}
	if !opts.BackoffEnabled {
		t.Error("expected BackoffEnabled true")
	}
	if opts.BackoffMin != 5*time.Millisecond || opts.BackoffMax != 30*time.Millisecond {
		t.Errorf("expected backoff bounds [5ms, 30ms], got [%v, %v]", opts.BackoffMin, opts.BackoffMax)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("default options must validate: %v", err)
	}
}
