package tui

import (
	"bytes"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// LogMsg is emitted when a log line should be appended to the TUI.
type LogMsg struct {
	Line string
}

// Sender is the part of *tea.Program that receives messages.
type Sender interface {
	Send(msg tea.Msg)
}

// LogWriter streams log output into the TUI so logging does not draw over
// the alternate screen.
type LogWriter struct {
	sender  Sender
	mu      sync.Mutex
	buffer  bytes.Buffer
	maxLine int
	lines   chan string
	done    chan struct{}
	once    sync.Once
	closed  bool
}

// NewLogWriter creates a LogWriter that sends log lines to sender.
func NewLogWriter(sender Sender) *LogWriter {
	w := &LogWriter{
		sender:  sender,
		maxLine: 500,
		lines:   make(chan string, 200),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		for line := range w.lines {
			w.sender.Send(LogMsg{Line: line})
		}
	}()
	return w
}

// Write implements io.Writer, splitting log output into lines.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, _ = w.buffer.Write(p)
	for {
		data := w.buffer.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}
		line := string(data[:idx])
		w.buffer.Next(idx + 1)
		w.sendLine(line)
	}
	return len(p), nil
}

// Close flushes any partial line and stops forwarding.
func (w *LogWriter) Close() error {
	w.once.Do(func() {
		w.mu.Lock()
		if w.buffer.Len() > 0 {
			w.sendLine(w.buffer.String())
			w.buffer.Reset()
		}
		w.closed = true
		close(w.lines)
		w.mu.Unlock()
		<-w.done
	})
	return nil
}

// sendLine drops the line when the TUI is not keeping up.
func (w *LogWriter) sendLine(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" || w.closed {
		return
	}
	if w.maxLine > 0 && len(line) > w.maxLine {
		line = line[:w.maxLine] + "..."
	}
	select {
	case w.lines <- line:
	default:
	}
}
