// Package tui is the interactive refresh screen: pick targets, watch the
// live estimate, start a refresh and follow its progress.
package tui

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenem/zenem/internal/refresh"
)

// Controller is the part of *refresh.Controller the TUI drives.
type Controller interface {
	Snapshot() refresh.State
	Open(ctx context.Context, contextHint string)
	UpdateSelection(ctx context.Context, sel refresh.Selection)
	Start(ctx context.Context) string
	Cancel(ctx context.Context, orchestrationID string) bool
}

// Model is the bubbletea model for the refresh TUI
type Model struct {
	// Configuration
	Styles      Styles
	ContextHint string

	ctrl Controller
	ctx  context.Context

	// State mirrors the controller; refreshed on every StateMsg
	State  refresh.State
	Cursor int

	Spinner  spinner.Model
	Progress progress.Model

	StartTime time.Time
	LogLines  []string
	LogLimit  int
	ShowLogs  bool
	Width     int
	Height    int

	// OrchestrationID is the run started or watched from this screen
	OrchestrationID string

	// Control
	Quitting bool
	Finished bool
}

// NewModel creates a new TUI model driving ctrl.
func NewModel(ctx context.Context, ctrl Controller, contextHint string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		Styles:      DefaultStyles(),
		ContextHint: contextHint,
		ctrl:        ctrl,
		ctx:         ctx,
		State:       ctrl.Snapshot(),
		Spinner:     sp,
		Progress:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		StartTime:   time.Now(),
		LogLimit:    200,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.Spinner.Tick,
		m.openCmd(),
	)
}

// Result returns the last status of the run started from this screen,
// or nil if none was started.
func (m *Model) Result() *refresh.StatusResponse {
	cur := m.State.CurrentRefresh
	if cur == nil || cur.OrchestrationID != m.OrchestrationID {
		return nil
	}
	return cur.Status
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

// tickCmd returns a command that sends TickMsg every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// StateMsg tells the model the controller state changed
type StateMsg struct{}

// StartedMsg reports the outcome of starting a refresh; ID is empty on failure
type StartedMsg struct {
	ID string
}

// CancelledMsg reports the outcome of cancelling a refresh
type CancelledMsg struct {
	OK bool
}

// QuitMsg signals the program should exit
type QuitMsg struct{}

func (m *Model) openCmd() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Open(m.ctx, m.ContextHint)
		return StateMsg{}
	}
}

func (m *Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		return StartedMsg{ID: m.ctrl.Start(m.ctx)}
	}
}

func (m *Model) cancelCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return CancelledMsg{OK: m.ctrl.Cancel(m.ctx, id)}
	}
}

// toggle flips target in the selection.
func (m *Model) toggle(target refresh.Target) {
	sel := m.State.Selection
	targets := slices.Clone(sel.Targets)
	if i := slices.Index(targets, target); i >= 0 {
		targets = slices.Delete(targets, i, i+1)
	} else {
		targets = append(targets, target)
	}
	sel.Targets = targets
	m.ctrl.UpdateSelection(m.ctx, sel)
	m.State = m.ctrl.Snapshot()
}

// running reports whether a run is being followed and not yet finished.
func (m *Model) running() bool {
	cur := m.State.CurrentRefresh
	if cur == nil {
		return false
	}
	return cur.Status == nil || !cur.Status.Status.IsTerminal()
}

func (m *Model) selected(target refresh.Target) bool {
	return slices.Contains(m.State.Selection.Targets, target)
}

func (m *Model) suggested(target refresh.Target) bool {
	if m.State.Suggestions == nil {
		return false
	}
	return slices.Contains(m.State.Suggestions.SuggestedTargets, target)
}
