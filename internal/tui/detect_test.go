package tui

import "testing"

func clearOverrides(t *testing.T) {
	t.Setenv("DEEPWIKI_NON_INTERACTIVE", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")
}

func TestDetectModeEnvOverride(t *testing.T) {
	clearOverrides(t)
	t.Setenv("DEEPWIKI_NON_INTERACTIVE", "1")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
}

func TestDetectModeCI(t *testing.T) {
	clearOverrides(t)
	t.Setenv("CI", "true")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
}

func TestDetectModeNoColor(t *testing.T) {
	clearOverrides(t)
	t.Setenv("NO_COLOR", "1")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
}

func TestDetectModeNoTerminal(t *testing.T) {
	// Test processes never have a terminal on stdin/stdout.
	clearOverrides(t)

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
}

func TestDetectModeEnvWrongValueFallsThrough(t *testing.T) {
	// Only "1" is an override; other values fall through to the
	// terminal check.
	clearOverrides(t)
	t.Setenv("DEEPWIKI_NON_INTERACTIVE", "true")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
}

func TestIsInteractiveFalseInTests(t *testing.T) {
	clearOverrides(t)

	if IsInteractive() {
		t.Error("IsInteractive() = true in test environment, want false")
	}
}
