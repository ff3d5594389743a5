package deepwiki

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
)

const (
	// DefaultRetryMaxRetries is the default number of retry attempts after
	// the first failed attempt for transient database failures.
	DefaultRetryMaxRetries = 3

	// DefaultRetryBackoffMin is the default lower bound of the randomized
	// backoff delay between retry attempts.
	DefaultRetryBackoffMin = 5 * time.Millisecond

	// DefaultRetryBackoffMax is the default upper bound of the randomized
	// backoff delay between retry attempts.
	DefaultRetryBackoffMax = 30 * time.Millisecond

	// DefaultTokenTTL is the default lifetime of issued session tokens.
	DefaultTokenTTL = 12 * time.Hour

	// DefaultHTTPPort is the port the server listens on when the
	// configuration does not specify one.
	DefaultHTTPPort = 8080

	// MaxUploadSizeBytes caps the size of a single uploaded file.
	MaxUploadSizeBytes = 16 << 20 // 16 MiB

	// DefaultSearchLimit is the number of search hits returned when the
	// request does not specify a limit.
	DefaultSearchLimit = 20
)
