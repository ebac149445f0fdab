package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var levelColors = map[Level]lipgloss.Color{
	LevelSuccess: lipgloss.Color("42"),
	LevelInfo:    lipgloss.Color("39"),
	LevelWarning: lipgloss.Color("214"),
	LevelError:   lipgloss.Color("196"),
}

var levelIcons = map[Level]string{
	LevelSuccess: "✓",
	LevelInfo:    "ℹ",
	LevelWarning: "⚠",
	LevelError:   "✗",
}

// Terminal writes toasts to a terminal stream (stderr by default)
type Terminal struct {
	mu sync.Mutex // Serializes writes
	w  io.Writer
}

// NewTerminal creates a terminal notifier writing to w; nil means stderr
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{w: w}
}

// Notify renders the toast as a bordered box
func (t *Terminal) Notify(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	color, ok := levelColors[n.Level]
	if !ok {
		color = levelColors[LevelInfo]
	}
	icon := levelIcons[n.Level]

	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(strings.TrimSpace(icon + " " + n.Title))
	lines := []string{title}
	if n.Message != "" {
		lines = append(lines, n.Message)
	}

	keys := make([]string, 0, len(n.Context))
	for k := range n.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	for _, k := range keys {
		lines = append(lines, dim.Render(fmt.Sprintf("%s: %s", k, n.Context[k])))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, box)
	return err
}

// Name returns "terminal"
func (t *Terminal) Name() string {
	return "terminal"
}
