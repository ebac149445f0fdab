package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		// Refresh the timer and pick up state the bus may not have announced
		m.State = m.ctrl.Snapshot()
		m.checkFinished()
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case StateMsg:
		m.State = m.ctrl.Snapshot()
		m.checkFinished()

	case StartedMsg:
		m.State = m.ctrl.Snapshot()
		if msg.ID != "" {
			m.OrchestrationID = msg.ID
		}

	case CancelledMsg:
		m.State = m.ctrl.Snapshot()
		if msg.OK {
			m.Finished = true
		}

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.Quitting = true
		return m, tea.Quit

	case "l":
		m.ShowLogs = !m.ShowLogs
		return m, nil
	}

	// A running refresh only accepts cancel
	if m.running() {
		if msg.String() == "c" {
			return m, m.cancelCmd(m.State.CurrentRefresh.OrchestrationID)
		}
		return m, nil
	}
	if m.Finished || m.State.Loading {
		return m, nil
	}

	options := m.State.TargetOptions
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(options)-1 {
			m.Cursor++
		}
	case " ", "x":
		if m.Cursor < len(options) && options[m.Cursor].Available {
			m.toggle(options[m.Cursor].Target)
		}
	case "enter", "s":
		if m.State.Starting {
			return m, nil
		}
		return m, m.startCmd()
	}
	return m, nil
}

// checkFinished marks the screen finished once the started run is terminal.
func (m *Model) checkFinished() {
	if r := m.Result(); r != nil && r.Status.IsTerminal() {
		m.Finished = true
	}
}
