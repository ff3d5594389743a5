// Package tui provides the interactive terminal surface: mode detection,
// shared styling, and the guided setup wizard used by deepwiki init.
package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode is the interaction mode deepwiki runs in.
type Mode int

const (
	// ModeNonInteractive is used in CI, scripts, and piped invocations.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// DetectMode decides whether the interactive wizard may run.
//
// Non-interactive when:
//   - DEEPWIKI_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - stdin or stdout is not a terminal
func DetectMode() Mode {
	if os.Getenv("DEEPWIKI_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModeNonInteractive
	}

	return ModeInteractive
}

// IsInteractive reports whether a wizard may take over the terminal.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
