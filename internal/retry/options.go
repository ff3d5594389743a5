package retry

import (
	"fmt"
	"time"

	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Options controls retry behavior. Options are fixed when the Retrier is
// constructed; there is no mutation API afterwards.
type Options struct {
	// MaxRetries is the maximum number of retry attempts after the first
	// failed attempt. 0 means the operation runs exactly once.
	MaxRetries int

	// BackoffEnabled pauses between retries when true.
	BackoffEnabled bool

	// BackoffMin and BackoffMax bound the randomized delay between retries.
	// Both bounds are inclusive; BackoffMin == BackoffMax yields a fixed
	// delay.
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// DefaultOptions returns the standard retry configuration:
// 3 retries with a 5-30ms randomized backoff.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     deepwiki.DefaultRetryMaxRetries,
		BackoffEnabled: true,
		BackoffMin:     deepwiki.DefaultRetryBackoffMin,
		BackoffMax:     deepwiki.DefaultRetryBackoffMax,
	}
}

// Validate checks the invariants of the configuration. Violations are
// configuration errors surfaced at construction time, never at call time.
func (o Options) Validate() error {
	if o.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative (%d): %w", o.MaxRetries, deepwiki.ErrInvalidConfig)
	}
	if o.BackoffMin < 0 {
		return fmt.Errorf("backoff min cannot be negative (%v): %w", o.BackoffMin, deepwiki.ErrInvalidConfig)
	}
	if o.BackoffMin > o.BackoffMax {
		return fmt.Errorf("backoff min %v exceeds backoff max %v: %w", o.BackoffMin, o.BackoffMax, deepwiki.ErrInvalidConfig)
	}
	return nil
}
