// Package notify delivers user-facing toasts: success and failure messages
// from CLI flows, written to the terminal and optionally forwarded to Slack
// or a webhook.
package notify

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level indicates what kind of toast this is
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a single toast
type Notification struct {
	ID      string            // ULID, sortable by creation time
	Level   Level             // success, info, warning or error
	Title   string            // Short summary (one line)
	Message string            // Detailed explanation
	Context map[string]string // Additional context (orchestration ID, job ID, ...)
	Time    time.Time
}

// New creates a notification with a fresh ID
func New(level Level, title, message string) Notification {
	now := time.Now()
	return Notification{
		ID:      ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Level:   level,
		Title:   title,
		Message: message,
		Time:    now,
	}
}

// Failure builds an error toast from err
func Failure(title string, err error) Notification {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return New(LevelError, title, msg)
}

// Success builds a success toast
func Success(title, message string) Notification {
	return New(LevelSuccess, title, message)
}

// With returns a copy of n with a context entry added
func (n Notification) With(key, value string) Notification {
	ctx := make(map[string]string, len(n.Context)+1)
	for k, v := range n.Context {
		ctx[k] = v
	}
	ctx[key] = value
	n.Context = ctx
	return n
}

// Notifier is the interface for showing toasts
type Notifier interface {
	// Notify delivers the notification.
	// Implementations should respect context cancellation.
	Notify(ctx context.Context, n Notification) error

	// Name returns the notifier type for logging
	Name() string
}
