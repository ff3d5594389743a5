// Package retry provides automatic retry with randomized backoff for the
// single class of database failure that is safe to replay blindly: the
// server closing an otherwise healthy connection.
//
// # Example Usage
//
//	classifier := retry.NewServerClosedClassifier()
//	retrier, err := retry.New(retry.DefaultOptions(), classifier, logger)
//	if err != nil {
//	    return err
//	}
//
//	err = retrier.Do(ctx, func(ctx context.Context) error {
//	    return store.Ping(ctx)
//	})
//
// # Error Classification
//
// The deepwiki.ErrorClassifier interface decides which errors are transient.
// Classification is a capability check, not a type check: any error in the
// chain that exposes an SQLSTATE code equal to the sentinel is transient,
// regardless of which driver produced it. Everything else propagates to the
// caller unchanged after a single attempt.
//
// # Backoff
//
// Between retries the wrapper sleeps for a duration drawn uniformly from
// [BackoffMin, BackoffMax], both bounds inclusive, re-sampled on every
// retry. The delay suspends only the calling goroutine. When the configured
// retry budget is exhausted the wrapper fails with a *RetryLimitError that
// matches ErrRetryLimitExceeded via errors.Is.
//
// # Thread Safety
//
// A Retrier is immutable after construction and safe for concurrent use;
// each Do call keeps its retry counter on its own stack.
package retry
