package tui

import (
	"strings"

	"github.com/zenem/zenem/internal/events"
)

// Bridge connects the event bus to the bubbletea program
type Bridge struct {
	sender Sender
}

// NewBridge creates a new bridge for the given program
func NewBridge(sender Sender) *Bridge {
	return &Bridge{sender: sender}
}

// Handler returns an event handler that wakes the model on refresh events
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		if strings.HasPrefix(string(evt.Type), "refresh.") {
			b.sender.Send(StateMsg{})
		}
	}
}

// SendQuit sends a QuitMsg to the program
func (b *Bridge) SendQuit() {
	b.sender.Send(QuitMsg{})
}
