package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m tea.Model, keys ...string) tea.Model {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m
}

func asWizard(t *testing.T, m tea.Model) SetupWizard {
	t.Helper()
	w, ok := m.(SetupWizard)
	require.True(t, ok)
	return w
}

func TestSetupWizardDefaultsThroughReview(t *testing.T) {
	var m tea.Model = NewSetupWizard()

	// Accept every field with enter; the last enter moves to review.
	for i := 0; i < fieldCount; i++ {
		m = send(t, m, "enter")
	}
	w := asWizard(t, m)
	require.Equal(t, stepReview, w.step)

	view := w.View()
	assert.Contains(t, view, "deepwiki@localhost:5432/deepwiki")
	assert.Contains(t, view, "0.0.0.0:8080")

	// Confirm.
	m = send(t, m, "enter")
	w = asWizard(t, m)
	assert.True(t, w.Accepted())

	cfg := w.Result().Config
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "deepwiki", cfg.Database.Database)
	assert.Equal(t, "prefer", cfg.Database.SSLMode)
	assert.Empty(t, cfg.Database.AuthMethod)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.False(t, cfg.Auth.RegistrationEnabled)
	assert.Equal(t, "12h", cfg.Auth.TokenTTL)
}

func TestSetupWizardTextEntry(t *testing.T) {
	var m tea.Model = NewSetupWizard()

	// Replace the default database host.
	for i := 0; i < len("localhost"); i++ {
		m = send(t, m, "backspace")
	}
	m = send(t, m, "d", "b", ".", "i", "n", "t")

	for i := 0; i < fieldCount; i++ {
		m = send(t, m, "enter")
	}
	m = send(t, m, "enter")

	w := asWizard(t, m)
	require.True(t, w.Accepted())
	assert.Equal(t, "db.int", w.Result().Config.Database.Host)
}

func TestSetupWizardChoiceCycling(t *testing.T) {
	var m tea.Model = NewSetupWizard()

	// Move to the auth method field and pick aws-iam.
	for i := 0; i < fieldAuthMethod; i++ {
		m = send(t, m, "tab")
	}
	m = send(t, m, "right")

	for i := fieldAuthMethod; i < fieldCount; i++ {
		m = send(t, m, "enter")
	}
	m = send(t, m, "enter")

	w := asWizard(t, m)
	require.True(t, w.Accepted())
	assert.Equal(t, "aws-iam", w.Result().Config.Database.AuthMethod)
}

func TestSetupWizardChoiceWrapsLeft(t *testing.T) {
	var m tea.Model = NewSetupWizard()

	for i := 0; i < fieldStorageBackend; i++ {
		m = send(t, m, "tab")
	}
	// Left from "memory" wraps to the last choice, "gcs".
	m = send(t, m, "left")

	w := asWizard(t, m)
	assert.Equal(t, "gcs", w.fieldValue(fieldStorageBackend))
}

func TestSetupWizardGCSRequiresBucket(t *testing.T) {
	var m tea.Model = NewSetupWizard()

	for i := 0; i < fieldStorageBackend; i++ {
		m = send(t, m, "tab")
	}
	m = send(t, m, "right") // gcs, bucket left empty

	for i := fieldStorageBackend; i < fieldCount; i++ {
		m = send(t, m, "enter")
	}

	w := asWizard(t, m)
	assert.Equal(t, stepForm, w.step)
	assert.Contains(t, w.errMsg, "bucket")
	assert.True(t, strings.Contains(w.View(), "bucket"))
}

func TestSetupWizardInvalidPort(t *testing.T) {
	var m tea.Model = NewSetupWizard()

	m = send(t, m, "tab") // database port field
	for i := 0; i < len("5432"); i++ {
		m = send(t, m, "backspace")
	}
	m = send(t, m, "a", "b", "c")

	for i := fieldDBPort; i < fieldCount; i++ {
		m = send(t, m, "enter")
	}

	w := asWizard(t, m)
	assert.Equal(t, stepForm, w.step)
	assert.Contains(t, w.errMsg, "port")
}

func TestSetupWizardReviewBackReturnsToForm(t *testing.T) {
	var m tea.Model = NewSetupWizard()
	for i := 0; i < fieldCount; i++ {
		m = send(t, m, "enter")
	}
	require.Equal(t, stepReview, asWizard(t, m).step)

	m = send(t, m, "esc")
	assert.Equal(t, stepForm, asWizard(t, m).step)
}

func TestSetupWizardCancel(t *testing.T) {
	var m tea.Model = NewSetupWizard()
	m = send(t, m, "ctrl+c")

	w := asWizard(t, m)
	assert.True(t, w.Result().Cancelled)
	assert.False(t, w.Accepted())
}

func TestSetupWizardEscCancelsForm(t *testing.T) {
	var m tea.Model = NewSetupWizard()
	m = send(t, m, "esc")

	assert.True(t, asWizard(t, m).Result().Cancelled)
}
