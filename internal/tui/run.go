package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// RunSetup runs the setup wizard to completion and returns the result.
// The caller must have checked IsInteractive first.
func RunSetup() (SetupResult, error) {
	model, err := tea.NewProgram(NewSetupWizard()).Run()
	if err != nil {
		return SetupResult{Cancelled: true}, fmt.Errorf("setup wizard failed: %w", err)
	}

	w, ok := model.(SetupWizard)
	if !ok {
		return SetupResult{Cancelled: true}, fmt.Errorf("setup wizard returned unexpected model")
	}
	if !w.Accepted() {
		return SetupResult{Cancelled: true}, nil
	}
	return w.Result(), nil
}

// Progress prints step-by-step status lines. Plain output in
// non-interactive mode, symbols when a human is watching.
type Progress struct {
	interactive bool
}

func NewProgress() *Progress {
	return &Progress{interactive: IsInteractive()}
}

func (p *Progress) Start(message string) {
	if p.interactive {
		fmt.Println(symbolBusy + " " + message)
		return
	}
	fmt.Println(message)
}

func (p *Progress) Success(message string) {
	fmt.Println(symbolCheck + " " + message)
}

func (p *Progress) Fail(message string) {
	fmt.Println(symbolCross + " " + message)
}
