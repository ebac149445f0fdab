package events

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/zenem/zenem/internal/logging"
)

// JSONEvent is the wire format of events written by `--json` output.
type JSONEvent struct {
	// Type identifies the event (e.g., "refresh.progress")
	Type string `json:"type"`

	// Timestamp is when the event occurred (RFC3339 format)
	Timestamp time.Time `json:"timestamp"`

	// Subject is the orchestration, job or connector ID
	Subject string `json:"subject,omitempty"`

	// Payload contains event-specific data
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// IsJSONMode returns true if JSON event output should be enabled.
// Checks: (1) explicit forceJSON flag, (2) non-TTY stdout.
func IsJSONMode(forceJSON bool) bool {
	if forceJSON {
		return true
	}

	if os.Stdout != nil {
		return !term.IsTerminal(int(os.Stdout.Fd()))
	}

	return true
}

// JSONEmitter writes events as JSON lines to a writer.
// Thread-safe for concurrent Emit calls.
type JSONEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONEmitter creates a new JSON emitter that writes to w.
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{enc: json.NewEncoder(w)}
}

// Emit converts the Event to JSONEvent wire format and writes it.
func (e *JSONEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.enc.Encode(ToJSONEvent(event))
}

// JSONEmitterHandler returns a Handler that emits events as JSON lines.
// Errors are logged but not propagated (handler interface has no return).
func JSONEmitterHandler(emitter *JSONEmitter) Handler {
	log := logging.Get("events")
	return func(e Event) {
		if err := emitter.Emit(e); err != nil {
			log.Warningf("failed to emit JSON event: %v", err)
		}
	}
}

// ToJSONEvent converts an Event to the wire format JSONEvent.
func ToJSONEvent(e Event) JSONEvent {
	return JSONEvent{
		Type:      string(e.Type),
		Timestamp: e.Time,
		Subject:   e.Subject,
		Payload:   e.Payload,
		Error:     e.Error,
	}
}

// ParseJSONEvent parses a JSON line into an Event. Payloads come back as
// generic JSON values.
func ParseJSONEvent(line []byte) (Event, error) {
	var je JSONEvent
	if err := json.Unmarshal(line, &je); err != nil {
		return Event{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return Event{
		Type:    EventType(je.Type),
		Time:    je.Timestamp,
		Subject: je.Subject,
		Payload: je.Payload,
		Error:   je.Error,
	}, nil
}
