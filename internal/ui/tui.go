// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the playback UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Control carries user intent out of the TUI.
type Control struct {
	Quit chan struct{}
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Quit: make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(control *Control) Model {
	return Model{
		state:   "not-started",
		control: control,
	}
}

// Run starts the TUI
func Run(control *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(control), tea.WithAltScreen())
	return p, nil
}
