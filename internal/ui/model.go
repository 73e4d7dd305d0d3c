// ABOUTME: Bubbletea model for playback TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ChannelStatus is one channel's view of the session.
type ChannelStatus struct {
	Sink     string
	Device   string
	Position int
	Length   int
	Resyncs  int64
	Drift    int64
	Active   bool
}

// StatusMsg updates the TUI. Nil/zero fields leave the previous value.
type StatusMsg struct {
	State      string
	File       string
	SampleRate int
	OffsetMs   *int
	Left       *ChannelStatus
	Right      *ChannelStatus
}

// Model represents the TUI state
type Model struct {
	// Session
	state      string
	file       string
	sampleRate int
	offsetMs   int

	// Channels
	left  ChannelStatus
	right ChannelStatus

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int

	control *Control
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderChannel(m.left, "Left ")
	s += m.renderChannel(m.right, "Right")

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders the session line
func (m Model) renderHeader() string {
	source := m.file
	if source == "" {
		source = "(no file)"
	}

	format := ""
	if m.sampleRate > 0 {
		format = fmt.Sprintf("%d Hz", m.sampleRate)
		if m.offsetMs != 0 {
			format += fmt.Sprintf(", offset %+dms", m.offsetMs)
		}
	}

	return fmt.Sprintf(`┌─ Splitcast ──────────────────────────────────────────┐
│ State:  %-45s │
│ Source: %-45s │
│ Format: %-45s │
├──────────────────────────────────────────────────────┤
`, m.state, truncate(source, 45), format)
}

// renderChannel renders one channel's progress
func (m Model) renderChannel(ch ChannelStatus, label string) string {
	if ch.Sink == "" {
		return fmt.Sprintf("│ %s: (not routed)%-36s │\n", label, "")
	}

	liveIcon := "▶"
	if !ch.Active {
		liveIcon = "■"
	}

	bar := renderBar(ch.Position, ch.Length, 20)
	pct := 0
	if ch.Length > 0 {
		pct = ch.Position * 100 / ch.Length
	}

	s := fmt.Sprintf("│ %s %s %-44s │\n", liveIcon, label, truncate(ch.Sink, 44))
	s += fmt.Sprintf("│    └ %-48s │\n", truncate(ch.Device, 48))
	s += fmt.Sprintf("│      [%s] %3d%%  %s  resyncs: %-6d │\n",
		bar, pct, elapsedString(ch.Position, m.sampleRate), ch.Resyncs)
	return s
}

// renderDebug renders per-channel drift details
func (m Model) renderDebug() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ DEBUG:                                               │
│   Left : pos %8d / %8d  drift %+6d        │
│   Right: pos %8d / %8d  drift %+6d        │
`, m.left.Position, m.left.Length, m.left.Drift,
		m.right.Position, m.right.Length, m.right.Drift)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ d:Debug  q:Stop                                      │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.control != nil {
			select {
			case m.control.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.File != "" {
		m.file = msg.File
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
	}
	if msg.OffsetMs != nil {
		m.offsetMs = *msg.OffsetMs
	}
	if msg.Left != nil {
		m.left = *msg.Left
	}
	if msg.Right != nil {
		m.right = *msg.Right
	}
}

// renderBar renders a progress bar of the given width
func renderBar(value, max, width int) string {
	if max <= 0 {
		return fmt.Sprintf("%*s", width, "")
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

// truncate shortens a string to fit the layout
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// elapsedString formats a sample position as a duration
func elapsedString(position, sampleRate int) string {
	if sampleRate <= 0 {
		return "0:00"
	}
	d := time.Duration(position) * time.Second / time.Duration(sampleRate)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
