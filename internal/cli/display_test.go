package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/events"
	"github.com/zenem/zenem/internal/notify"
	"github.com/zenem/zenem/internal/refresh"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) Name() string { return "recording" }

func TestGetStatusSymbol(t *testing.T) {
	tests := []struct {
		status api.RefreshStatus
		want   StatusSymbol
	}{
		{api.StatusCompleted, SymbolComplete},
		{api.StatusRunning, SymbolInProgress},
		{api.StatusInProgress, SymbolInProgress},
		{api.StatusFailed, SymbolFailed},
		{api.StatusCancelled, SymbolCancelled},
		{api.RefreshStatus("PENDING"), SymbolPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetStatusSymbol(tt.status), string(tt.status))
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "[░░░░░░░░░░]   0%"},
		{50, "[█████░░░░░]  50%"},
		{100, "[██████████] 100%"},
		{150, "[██████████] 100%"},
		{-5, "[░░░░░░░░░░]   0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RenderProgressBar(tt.percent, 10))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{2*time.Minute + 30*time.Second, "2m30s"},
		{5 * time.Minute, "5m"},
		{time.Hour + 15*time.Minute, "1h15m"},
		{2 * time.Hour, "2h"},
		{1499 * time.Millisecond, "1s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d), tt.d.String())
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "-", formatTimestamp(""))
	assert.Equal(t, "yesterday-ish", formatTimestamp("yesterday-ish"))

	recent := time.Now().Add(-3 * time.Minute).UTC().Format(time.RFC3339)
	assert.Equal(t, "3 minutes ago", formatTimestamp(recent))
}

func TestDisplayActive(t *testing.T) {
	var buf bytes.Buffer
	displayActive(&buf, nil)
	assert.Equal(t, "No active refreshes\n", buf.String())

	buf.Reset()
	displayActive(&buf, []api.RefreshStatusResponse{{
		OrchestrationID: "o1",
		Status:          api.StatusRunning,
		OverallProgress: 42,
		Targets:         []api.TargetProgress{{Target: "EPICS"}, {Target: "SPRINTS"}},
	}})
	out := buf.String()
	assert.Contains(t, out, "o1")
	assert.Contains(t, out, "42%")
	assert.Contains(t, out, "EPICS,SPRINTS")
}

func TestDisplayEstimate(t *testing.T) {
	var buf bytes.Buffer
	displayEstimate(&buf, nil)
	assert.Empty(t, buf.String())

	displayEstimate(&buf, &api.RefreshEstimate{EstimatedDurationSeconds: 3700, EstimatedRecords: 1234567, Warnings: []string{"large"}})
	assert.Contains(t, buf.String(), "~1,234,567 records in about 1h1m")
	assert.Contains(t, buf.String(), "warning: large")
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, parseList([]string{"a, b", " c ", ",,"}))
	assert.Empty(t, parseList(nil))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, "Go?"), "%q", tt.input)
		assert.Equal(t, "Go? [y/N] ", out.String())
	}
}

func TestRefreshOptions_Selection(t *testing.T) {
	base := refresh.Selection{Targets: []refresh.Target{"TEAMMATES"}, ConnectionTypes: []string{"JIRA"}}

	got := RefreshOptions{Targets: []string{"epics,sprints"}}.Selection(base)
	assert.Equal(t, []refresh.Target{"EPICS", "SPRINTS"}, got.Targets)
	assert.Equal(t, []string{"JIRA"}, got.ConnectionTypes)

	kept := RefreshOptions{Connections: []string{"c1"}}.Selection(base)
	assert.Equal(t, []refresh.Target{"TEAMMATES"}, kept.Targets)
	assert.Equal(t, []string{"c1"}, kept.ConnectionIDs)
}

func TestFinishRefresh(t *testing.T) {
	ctx := context.Background()

	n := &recordingNotifier{}
	require.NoError(t, finishRefresh(ctx, n, &api.RefreshStatusResponse{OrchestrationID: "o1", Status: api.StatusCompleted}))
	require.NoError(t, finishRefresh(ctx, n, &api.RefreshStatusResponse{OrchestrationID: "o2", Status: api.StatusCancelled}))
	err := finishRefresh(ctx, n, &api.RefreshStatusResponse{
		OrchestrationID: "o3", Status: api.StatusFailed, Errors: []string{"a", "b"},
	})
	require.Error(t, err)
	assert.Equal(t, "refresh o3 failed: a; b", err.Error())

	require.Len(t, n.sent, 3)
	assert.Equal(t, notify.LevelSuccess, n.sent[0].Level)
	assert.Equal(t, notify.LevelWarning, n.sent[1].Level)
	assert.Equal(t, notify.LevelError, n.sent[2].Level)
	assert.Equal(t, "o3", n.sent[2].Context["orchestration"])
}

func TestFollowRefresh_IgnoresUnrelatedEvents(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	var out lockedBuffer
	final, err := followRefresh(context.Background(), bus, &out, func() (string, error) {
		bus.Emit(events.NewEvent(events.RefreshFailed, "").WithError(assert.AnError))
		st := api.RefreshStatusResponse{OrchestrationID: "o1", Status: api.StatusRunning, OverallProgress: 10}
		bus.Emit(events.NewEvent(events.RefreshProgress, "o1").WithPayload(st))
		bus.Emit(events.NewEvent(events.RefreshProgress, "o1").WithPayload(st))
		st.Status, st.OverallProgress = api.StatusCompleted, 100
		bus.Emit(events.NewEvent(events.RefreshProgress, "o1").WithPayload(st))
		bus.Emit(events.NewEvent(events.RefreshCompleted, "o1").WithPayload(st))
		return "o1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, api.StatusCompleted, final.Status)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2, "duplicate progress lines are collapsed")
}

func TestFollowRefresh_StartError(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	_, err := followRefresh(context.Background(), bus, &bytes.Buffer{}, func() (string, error) {
		return "", assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestFollowRefresh_Cancelled(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	final, err := followRefresh(context.Background(), bus, &bytes.Buffer{}, func() (string, error) {
		bus.Emit(events.NewEvent(events.RefreshCancelled, "o1"))
		return "o1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, api.StatusCancelled, final.Status)
	assert.Equal(t, "o1", final.OrchestrationID)
}
