package deepwiki

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"invalid config", ErrInvalidConfig, ExitConfigError},
		{"wrapped invalid config", fmt.Errorf("loading: %w", ErrInvalidConfig), ExitConfigError},
		{"connection failed", ErrConnectionFailed, ExitConnectionError},
		{"unsupported auth method", ErrUnsupportedAuthMethod, ExitConfigError},
		{"connection refused pattern", errors.New("dial tcp: connection refused"), ExitConnectionError},
		{"no such host pattern", errors.New("lookup db.internal: no such host"), ExitConnectionError},
		{"unclassified", errors.New("something else"), ExitGeneralError},
		{"not found", ErrNotFound, ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidConfig, ErrConnectionFailed, ErrUnsupportedAuthMethod,
		ErrNotFound, ErrAlreadyExists, ErrUnauthorized, ErrForbidden,
		ErrVersionConflict,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
