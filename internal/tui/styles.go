package tui

import "github.com/charmbracelet/lipgloss"

// Color palette, kept minimal and accessible.
var (
	colorPrimary   = lipgloss.Color("39")  // Blue
	colorSecondary = lipgloss.Color("245") // Gray
	colorSuccess   = lipgloss.Color("34")  // Green
	colorError     = lipgloss.Color("196") // Red
	colorMuted     = lipgloss.Color("240") // Dark gray
)

// Shared styles for wizard rendering.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	selectedValueStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)
)

// Symbols for visual feedback.
const (
	symbolFocused   = "→"
	symbolCheck     = "✓"
	symbolCross     = "✗"
	symbolBusy      = "◐"
	symbolSeparator = "•"
)
