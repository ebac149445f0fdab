package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/events"
	"github.com/zenem/zenem/internal/refresh"
)

type fakeController struct {
	mu         sync.Mutex
	state      refresh.State
	opened     string
	selections []refresh.Selection
	startID    string
	cancelled  []string
}

func newFakeController() *fakeController {
	return &fakeController{state: refresh.State{
		IsOpen: true,
		TargetOptions: []api.TargetOption{
			{Target: "EPICS", Label: "Epics", Available: true},
			{Target: "SPRINTS", Label: "Sprints", Available: true},
			{Target: "RELEASES", Label: "Releases", Available: false},
		},
		Suggestions: &api.RefreshSuggestions{SuggestedTargets: []refresh.Target{"SPRINTS"}},
	}}
}

func (f *fakeController) Snapshot() refresh.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) Open(ctx context.Context, hint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = hint
}

func (f *fakeController) UpdateSelection(ctx context.Context, sel refresh.Selection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selections = append(f.selections, sel)
	f.state.Selection = sel
}

func (f *fakeController) Start(ctx context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startID != "" {
		f.state.CurrentRefresh = &refresh.CurrentRefresh{OrchestrationID: f.startID}
	}
	return f.startID
}

func (f *fakeController) Cancel(ctx context.Context, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	f.state.CurrentRefresh = nil
	return true
}

func (f *fakeController) setStatus(st refresh.StatusResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.CurrentRefresh = &refresh.CurrentRefresh{OrchestrationID: st.OrchestrationID, Status: &st}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// exec runs cmd and feeds its message back into the model
func exec(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func TestModel_OpenUsesContextHint(t *testing.T) {
	ctrl := newFakeController()
	m := NewModel(context.Background(), ctrl, "epics")

	exec(t, m, m.openCmd())
	assert.Equal(t, "epics", ctrl.opened)
}

func TestModel_ToggleTargets(t *testing.T) {
	ctrl := newFakeController()
	m := NewModel(context.Background(), ctrl, "")

	m.Update(runes("x"))
	assert.Equal(t, []refresh.Target{"EPICS"}, m.State.Selection.Targets)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, []refresh.Target{"EPICS", "SPRINTS"}, m.State.Selection.Targets)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(runes("x"))
	assert.Equal(t, []refresh.Target{"SPRINTS"}, m.State.Selection.Targets)
}

func TestModel_UnavailableTargetIgnored(t *testing.T) {
	ctrl := newFakeController()
	m := NewModel(context.Background(), ctrl, "")

	for i := 0; i < 5; i++ {
		m.Update(runes("j"))
	}
	assert.Equal(t, 2, m.Cursor, "cursor stops at the last option")

	m.Update(runes("x"))
	assert.Empty(t, ctrl.selections)
}

func TestModel_StartFollowsRunUntilTerminal(t *testing.T) {
	ctrl := newFakeController()
	ctrl.startID = "o1"
	m := NewModel(context.Background(), ctrl, "")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	exec(t, m, cmd)
	assert.Equal(t, "o1", m.OrchestrationID)
	assert.True(t, m.running())
	assert.Contains(t, m.View(), "o1 waiting for progress")

	ctrl.setStatus(refresh.StatusResponse{
		OrchestrationID: "o1", Status: api.StatusRunning, OverallProgress: 40,
		Targets: []api.TargetProgress{{Target: "EPICS", Status: api.StatusRunning, Progress: 40, RecordsProcessed: 2048}},
	})
	m.Update(StateMsg{})
	assert.False(t, m.Finished)
	view := m.View()
	assert.Contains(t, view, "RUNNING")
	assert.Contains(t, view, "2,048 records")
	assert.Contains(t, view, "cancel")

	// Keys other than cancel are ignored while running
	m.Update(runes("x"))
	assert.Empty(t, ctrl.selections)

	ctrl.setStatus(refresh.StatusResponse{OrchestrationID: "o1", Status: api.StatusCompleted, OverallProgress: 100})
	m.Update(StateMsg{})
	assert.True(t, m.Finished)
	require.NotNil(t, m.Result())
	assert.Equal(t, api.StatusCompleted, m.Result().Status)
}

func TestModel_StartFailureKeepsSelection(t *testing.T) {
	ctrl := newFakeController()
	ctrl.state.Error = refresh.NoTargetsMessage
	m := NewModel(context.Background(), ctrl, "")

	_, cmd := m.Update(runes("s"))
	exec(t, m, cmd)
	assert.Empty(t, m.OrchestrationID)
	assert.Nil(t, m.Result())
	assert.Contains(t, m.View(), refresh.NoTargetsMessage)
}

func TestModel_Cancel(t *testing.T) {
	ctrl := newFakeController()
	ctrl.setStatus(refresh.StatusResponse{OrchestrationID: "o9", Status: api.StatusRunning})
	m := NewModel(context.Background(), ctrl, "")

	_, cmd := m.Update(runes("c"))
	exec(t, m, cmd)
	assert.Equal(t, []string{"o9"}, ctrl.cancelled)
	assert.True(t, m.Finished)
}

func TestModel_RunWatchedElsewhereIsNotResult(t *testing.T) {
	ctrl := newFakeController()
	ctrl.setStatus(refresh.StatusResponse{OrchestrationID: "other", Status: api.StatusCompleted})
	m := NewModel(context.Background(), ctrl, "")

	m.Update(StateMsg{})
	assert.Nil(t, m.Result())
	assert.False(t, m.Finished)
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(context.Background(), newFakeController(), "")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.Quitting)
	assert.Empty(t, m.View())
}

func TestModel_ViewTargets(t *testing.T) {
	ctrl := newFakeController()
	ctrl.state.ActiveCount = 2
	ctrl.state.Estimate = &refresh.Estimate{EstimatedRecords: 12000, EstimatedDurationSeconds: 75, Warnings: []string{"slow"}}
	m := NewModel(context.Background(), ctrl, "")

	view := m.View()
	assert.Contains(t, view, "Zenem Refresh")
	assert.Contains(t, view, "2 active")
	assert.Contains(t, view, "Epics")
	assert.Contains(t, view, "suggested")
	assert.Contains(t, view, "~12,000 records, about 00:01:15")
	assert.Contains(t, view, "! slow")
	assert.NotContains(t, view, "Logs")
}

func TestModel_LogPanel(t *testing.T) {
	m := NewModel(context.Background(), newFakeController(), "")
	m.LogLimit = 3
	for _, l := range []string{"a", "b", "c", "d"} {
		m.Update(LogMsg{Line: l})
	}
	assert.Equal(t, []string{"b", "c", "d"}, m.LogLines)

	m.Update(runes("l"))
	assert.True(t, m.ShowLogs)
	view := m.View()
	assert.Contains(t, view, "Logs")
	assert.Contains(t, view, "d")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", formatDuration(0))
	assert.Equal(t, "01:02:03", formatDuration(time.Hour+2*time.Minute+3*time.Second))
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, clampPercent(-10))
	assert.Equal(t, 0.5, clampPercent(50))
	assert.Equal(t, 1.0, clampPercent(250))
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *fakeSender) messages() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tea.Msg(nil), f.msgs...)
}

func TestBridge_ForwardsRefreshEvents(t *testing.T) {
	s := &fakeSender{}
	h := NewBridge(s).Handler()

	h(events.NewEvent(events.RefreshProgress, "o1"))
	h(events.NewEvent(events.WizardStepChanged, "j1"))
	h(events.NewEvent(events.RefreshBadge, ""))

	assert.Equal(t, []tea.Msg{StateMsg{}, StateMsg{}}, s.messages())

	NewBridge(s).SendQuit()
	assert.Equal(t, QuitMsg{}, s.messages()[2])
}

func TestLogWriter_SplitsLines(t *testing.T) {
	s := &fakeSender{}
	w := NewLogWriter(s)

	_, err := w.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ond\r\n\npartial"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var lines []string
	for _, msg := range s.messages() {
		lines = append(lines, msg.(LogMsg).Line)
	}
	assert.Equal(t, []string{"first", "second", "partial"}, lines)

	// Writes after Close are dropped
	_, err = w.Write([]byte("late\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Len(t, s.messages(), 3)
}

func TestLogWriter_TruncatesLongLines(t *testing.T) {
	s := &fakeSender{}
	w := NewLogWriter(s)

	w.Write([]byte(strings.Repeat("x", 600) + "\n"))
	w.Close()

	msgs := s.messages()
	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0].(LogMsg).Line, 503)
}
