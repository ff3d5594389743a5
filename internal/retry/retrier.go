package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// ErrRetryLimitExceeded is the sentinel matched by errors.Is when the retry
// budget is exhausted without success.
var ErrRetryLimitExceeded = errors.New("retry limit exceeded")

// RetryLimitError reports retry-limit exhaustion. It wraps the final
// transient error so callers can still reach the driver error, while
// remaining distinguishable from it.
type RetryLimitError struct {
	// Attempts is the total number of times the operation ran (1 + retries).
	Attempts int

	// Err is the transient error from the last attempt.
	Err error
}

func (e *RetryLimitError) Error() string {
	return fmt.Sprintf("retry limit exceeded after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryLimitError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRetryLimitExceeded) succeed for RetryLimitError
// values without also matching the wrapped driver error.
func (e *RetryLimitError) Is(target error) bool { return target == ErrRetryLimitExceeded }

// SleepFunc suspends the calling goroutine for d or until ctx is done.
// Injectable so tests substitute a recording, zero-cost implementation.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Retrier wraps database operations so that transient connection failures
// are replayed transparently. All other failures propagate unchanged.
//
// Thread Safety: a Retrier is immutable after New and safe for concurrent
// Do calls; the retry counter is local to each call.
type Retrier struct {
	opts       Options
	classifier deepwiki.ErrorClassifier
	logger     deepwiki.Logger
	sleep      SleepFunc
	randInt64  func(n int64) int64
}

// RetrierOption is a functional option for configuring a Retrier.
type RetrierOption func(*Retrier)

// WithSleepFunc replaces the delay primitive (tests use a deterministic one).
func WithSleepFunc(f SleepFunc) RetrierOption {
	return func(r *Retrier) {
		r.sleep = f
	}
}

// WithRandInt64 replaces the random source used to sample backoff delays.
// f must return values in [0, n).
func WithRandInt64(f func(n int64) int64) RetrierOption {
	return func(r *Retrier) {
		r.randInt64 = f
	}
}

// New creates a Retrier, validating opts immediately. A nil logger is
// replaced by a no-op; a nil classifier is a programming error.
func New(opts Options, classifier deepwiki.ErrorClassifier, logger deepwiki.Logger, ropts ...RetrierOption) (*Retrier, error) {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := &Retrier{
		opts:       opts,
		classifier: classifier,
		logger:     logger,
		sleep:      sleepWithContext,
		randInt64:  rand.Int63n,
	}
	for _, o := range ropts {
		o(r)
	}
	if r.logger == nil {
		r.logger = nopLogger{}
	}
	return r, nil
}

// Options returns the immutable configuration of the Retrier.
func (r *Retrier) Options() Options { return r.opts }

// Do runs op, replaying it on transient connection failures up to
// MaxRetries times. The result of a successful attempt is returned
// immediately; a non-transient error returns after exactly one attempt;
// exhaustion returns *RetryLimitError.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	retries := 0
	for {
		err := op(ctx)
		if err == nil {
			return nil
		}

		if !r.classifier.IsTransient(err) {
			return err
		}

		if retries >= r.opts.MaxRetries {
			return &RetryLimitError{Attempts: retries + 1, Err: err}
		}
		retries++

		r.logger.Info("Retrying (%d/%d)", retries, r.opts.MaxRetries)

		if r.opts.BackoffEnabled {
			if serr := r.sleep(ctx, r.nextDelay()); serr != nil {
				return serr
			}
		}
	}
}

// nextDelay samples uniformly from [BackoffMin, BackoffMax], inclusive on
// both ends, independently for every retry.
func (r *Retrier) nextDelay() time.Duration {
	span := int64(r.opts.BackoffMax - r.opts.BackoffMin)
	if span <= 0 {
		return r.opts.BackoffMin
	}
	return r.opts.BackoffMin + time.Duration(r.randInt64(span+1))
}

// sleepWithContext is the production SleepFunc. It blocks only the calling
// goroutine and returns early if ctx is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type nopLogger struct{}

func (nopLogger) Verbose(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})    {}
func (nopLogger) Error(string, ...interface{})   {}
