package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charles1614/deepwiki-sub003/internal/config"
)

// SetupResult holds the outcome of the setup wizard.
type SetupResult struct {
	Cancelled bool
	Config    config.Config
}

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldChoice
)

type setupField struct {
	label   string
	kind    fieldKind
	input   textinput.Model
	choices []string
	choice  int
}

func textField(label, placeholder, value string) setupField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 128
	in.Width = 36
	in.SetValue(value)
	return setupField{label: label, kind: fieldText, input: in}
}

func choiceField(label string, choices []string) setupField {
	return setupField{label: label, kind: fieldChoice, choices: choices}
}

// Field order in the form. Kept explicit so buildConfig stays readable.
const (
	fieldDBHost = iota
	fieldDBPort
	fieldDBUser
	fieldDBName
	fieldSSLMode
	fieldAuthMethod
	fieldListenPort
	fieldStorageBackend
	fieldBucket
	fieldRegistration
	fieldCount
)

type setupStep int

const (
	stepForm setupStep = iota
	stepReview
	stepDone
)

// SetupWizard collects a deepwiki.yaml interactively.
type SetupWizard struct {
	fields [fieldCount]setupField
	focus  int
	step   setupStep
	errMsg string

	result SetupResult

	keys  KeyMap
	width int
}

// NewSetupWizard returns a wizard pre-filled with sensible defaults.
func NewSetupWizard() SetupWizard {
	w := SetupWizard{
		keys:  DefaultKeyMap(),
		width: 80,
	}
	w.fields[fieldDBHost] = textField("Database host", "localhost", "localhost")
	w.fields[fieldDBPort] = textField("Database port", "5432", "5432")
	w.fields[fieldDBUser] = textField("Database user", "deepwiki", "deepwiki")
	w.fields[fieldDBName] = textField("Database name", "deepwiki", "deepwiki")
	w.fields[fieldSSLMode] = choiceField("SSL mode",
		[]string{"prefer", "require", "verify-ca", "verify-full", "disable"})
	w.fields[fieldAuthMethod] = choiceField("DB authentication",
		[]string{"standard", "aws-iam", "google-iam", "azure"})
	w.fields[fieldListenPort] = textField("HTTP listen port", "8080", "8080")
	w.fields[fieldStorageBackend] = choiceField("Upload storage",
		[]string{"memory", "gcs"})
	w.fields[fieldBucket] = textField("GCS bucket (gcs only)", "my-wiki-uploads", "")
	w.fields[fieldRegistration] = choiceField("Self-registration",
		[]string{"disabled", "enabled"})

	w.fields[fieldDBHost].input.Focus()
	return w
}

// Result returns the collected configuration. Only valid after the
// program has finished.
func (w SetupWizard) Result() SetupResult {
	return w.result
}

// Init implements tea.Model.
func (w SetupWizard) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (w SetupWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		return w, nil

	case tea.KeyMsg:
		if key.Matches(msg, w.keys.Quit) {
			w.result.Cancelled = true
			return w, tea.Quit
		}
		switch w.step {
		case stepForm:
			return w.updateForm(msg)
		case stepReview:
			return w.updateReview(msg)
		}
	}
	return w, nil
}

func (w SetupWizard) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Back):
		w.result.Cancelled = true
		return w, tea.Quit

	case key.Matches(msg, w.keys.Up):
		return w.moveFocus(-1), nil

	case key.Matches(msg, w.keys.Down):
		return w.moveFocus(1), nil

	case key.Matches(msg, w.keys.Left):
		if f := &w.fields[w.focus]; f.kind == fieldChoice {
			f.choice = (f.choice + len(f.choices) - 1) % len(f.choices)
			return w, nil
		}

	case key.Matches(msg, w.keys.Right):
		if f := &w.fields[w.focus]; f.kind == fieldChoice {
			f.choice = (f.choice + 1) % len(f.choices)
			return w, nil
		}

	case key.Matches(msg, w.keys.Select):
		if w.focus < fieldCount-1 {
			return w.moveFocus(1), nil
		}
		cfg, err := w.buildConfig()
		if err != nil {
			w.errMsg = err.Error()
			return w, nil
		}
		w.errMsg = ""
		w.result.Config = cfg
		w.step = stepReview
		return w, nil
	}

	// Everything else is text entry for the focused field.
	if w.fields[w.focus].kind == fieldText {
		var cmd tea.Cmd
		w.fields[w.focus].input, cmd = w.fields[w.focus].input.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w SetupWizard) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Back):
		w.step = stepForm
		return w, nil
	case key.Matches(msg, w.keys.Select):
		w.step = stepDone
		return w, tea.Quit
	}
	return w, nil
}

func (w SetupWizard) moveFocus(delta int) SetupWizard {
	next := w.focus + delta
	if next < 0 || next >= fieldCount {
		return w
	}
	if w.fields[w.focus].kind == fieldText {
		w.fields[w.focus].input.Blur()
	}
	w.focus = next
	if w.fields[w.focus].kind == fieldText {
		w.fields[w.focus].input.Focus()
	}
	return w
}

func (w SetupWizard) fieldValue(i int) string {
	f := w.fields[i]
	if f.kind == fieldChoice {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

func (w SetupWizard) buildConfig() (config.Config, error) {
	dbPort, err := strconv.Atoi(w.fieldValue(fieldDBPort))
	if err != nil || dbPort < 1 || dbPort > 65535 {
		return config.Config{}, fmt.Errorf("database port must be a number between 1 and 65535")
	}
	listenPort, err := strconv.Atoi(w.fieldValue(fieldListenPort))
	if err != nil || listenPort < 1 || listenPort > 65535 {
		return config.Config{}, fmt.Errorf("listen port must be a number between 1 and 65535")
	}
	if w.fieldValue(fieldDBName) == "" {
		return config.Config{}, fmt.Errorf("database name is required")
	}

	backend := w.fieldValue(fieldStorageBackend)
	bucket := w.fieldValue(fieldBucket)
	if backend == "gcs" && bucket == "" {
		return config.Config{}, fmt.Errorf("gcs storage requires a bucket name")
	}

	cfg := config.Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = listenPort
	cfg.Database.Host = w.fieldValue(fieldDBHost)
	cfg.Database.Port = dbPort
	cfg.Database.Username = w.fieldValue(fieldDBUser)
	cfg.Database.Database = w.fieldValue(fieldDBName)
	cfg.Database.SSLMode = w.fieldValue(fieldSSLMode)
	if m := w.fieldValue(fieldAuthMethod); m != "standard" {
		cfg.Database.AuthMethod = m
	}
	cfg.Storage.Backend = backend
	if backend == "gcs" {
		cfg.Storage.Bucket = bucket
	}
	cfg.Auth.TokenTTL = "12h"
	cfg.Auth.RegistrationEnabled = w.fieldValue(fieldRegistration) == "enabled"
	return cfg, nil
}

// View implements tea.Model.
func (w SetupWizard) View() string {
	switch w.step {
	case stepReview:
		return w.viewReview()
	case stepDone:
		return ""
	}
	return w.viewForm()
}

func (w SetupWizard) viewForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("deepwiki setup"))
	b.WriteString("\n")

	for i := range w.fields {
		f := w.fields[i]
		label := labelStyle.Render(f.label)
		marker := "  "
		if i == w.focus {
			label = focusedLabelStyle.Render(f.label)
			marker = symbolFocused + " "
		}
		b.WriteString(marker + label + "\n")

		if f.kind == fieldChoice {
			var parts []string
			for j, c := range f.choices {
				if j == f.choice {
					parts = append(parts, selectedValueStyle.Render("["+c+"]"))
				} else {
					parts = append(parts, valueStyle.Render(c))
				}
			}
			b.WriteString("    " + strings.Join(parts, "  ") + "\n")
		} else {
			b.WriteString("    " + f.input.View() + "\n")
		}
	}

	if w.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(symbolCross+" "+w.errMsg) + "\n")
	}
	b.WriteString(helpStyle.Render(w.keys.HelpText()))
	return b.String()
}

func (w SetupWizard) viewReview() string {
	cfg := w.result.Config
	var b strings.Builder
	b.WriteString(titleStyle.Render("Review configuration"))
	b.WriteString("\n")

	row := func(k, v string) {
		b.WriteString("  " + labelStyle.Render(k+":") + " " + v + "\n")
	}
	row("Database", fmt.Sprintf("%s@%s:%d/%s (sslmode=%s)",
		cfg.Database.Username, cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Database, cfg.Database.SSLMode))
	auth := cfg.Database.AuthMethod
	if auth == "" {
		auth = "standard"
	}
	row("DB auth", auth)
	row("Listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	storage := cfg.Storage.Backend
	if cfg.Storage.Bucket != "" {
		storage += " (" + cfg.Storage.Bucket + ")"
	}
	row("Uploads", storage)
	reg := "disabled"
	if cfg.Auth.RegistrationEnabled {
		reg = "enabled"
	}
	row("Registration", reg)

	b.WriteString("\n" + successStyle.Render(symbolCheck+" enter writes deepwiki.yaml") +
		" " + symbolSeparator + " " + helpStyle.Render("esc goes back"))
	return b.String()
}

// Accepted reports whether the wizard finished with a confirmed config.
func (w SetupWizard) Accepted() bool {
	return w.step == stepDone && !w.result.Cancelled
}
