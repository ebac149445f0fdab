package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single state change in a refresh or wizard flow
type Event struct {
	// Time is when the event occurred (set by bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Subject is the orchestration ID, job ID or connector ID the event
	// relates to (empty when there is none yet)
	Subject string `json:"subject,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category
type EventType string

// Refresh modal events
const (
	RefreshOpened           EventType = "refresh.opened"
	RefreshClosed           EventType = "refresh.closed"
	RefreshLoaded           EventType = "refresh.loaded"
	RefreshSelectionChanged EventType = "refresh.selection.changed"
	RefreshEstimating       EventType = "refresh.estimate.started"
	RefreshEstimated        EventType = "refresh.estimated"
	RefreshValidated        EventType = "refresh.validated"
	RefreshFailed           EventType = "refresh.failed"
)

// Refresh run events
const (
	// RefreshStarted is emitted after the backend accepts a selection
	// Payload: selection (api.RefreshSelection)
	RefreshStarted EventType = "refresh.started"

	// RefreshProgress is emitted for each status received while monitoring
	// Payload: status (api.RefreshStatusResponse)
	RefreshProgress EventType = "refresh.progress"

	// RefreshCompleted is emitted once when a monitored run reaches a
	// terminal status, whatever that status is
	// Payload: status (api.RefreshStatusResponse)
	RefreshCompleted EventType = "refresh.completed"

	RefreshCancelled EventType = "refresh.cancelled"

	// RefreshBadge is emitted when the active refresh count changes
	// Payload: count (int)
	RefreshBadge EventType = "refresh.badge"
)

// Wizard events
const (
	WizardStepChanged        EventType = "wizard.step.changed"
	WizardJobCreated         EventType = "wizard.job.created"
	WizardFiltersSaved       EventType = "wizard.filters.saved"
	WizardDiscoveryProgress  EventType = "wizard.discovery.progress"
	WizardDiscoveryCompleted EventType = "wizard.discovery.completed"
	WizardDiscoveryFailed    EventType = "wizard.discovery.failed"
	WizardMappingsSaved      EventType = "wizard.mappings.saved"
	WizardTestCompleted      EventType = "wizard.test.completed"
	WizardActivated          EventType = "wizard.activated"
	WizardFailed             EventType = "wizard.failed"
)

// NewEvent creates an event with the given type and subject
func NewEvent(eventType EventType, subject string) Event {
	return Event{
		Type:    eventType,
		Subject: subject,
	}
}

// WithPayload returns a copy of the event with the payload set
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this is a failure event type
func (e Event) IsFailure() bool {
	return strings.HasSuffix(string(e.Type), ".failed")
}

// String returns a human-readable representation of the event
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Subject != "" {
		parts = append(parts, e.Subject)
	}

	if e.Error != "" {
		parts = append(parts, fmt.Sprintf("error=%q", e.Error))
	}

	return strings.Join(parts, " ")
}
