// Package wizard drives the connector job setup flow:
// Create → Filters → Discovery → Suggestions → Test → Activate.
package wizard

import (
	"errors"
	"fmt"
)

// Step is a position in the setup flow.
type Step int

const (
	StepCreate Step = iota
	StepFilters
	StepDiscovery
	StepSuggestions
	StepTest
	StepActivate
	StepDone
)

var stepNames = map[Step]string{
	StepCreate:      "create",
	StepFilters:     "filters",
	StepDiscovery:   "discovery",
	StepSuggestions: "suggestions",
	StepTest:        "test",
	StepActivate:    "activate",
	StepDone:        "done",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Confirmations records which steps had their side effect confirmed by
// the backend.
type Confirmations map[Step]bool

func (c Confirmations) clone() Confirmations {
	out := make(Confirmations, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// resetFrom drops the confirmations of step and every step after it.
func (c Confirmations) resetFrom(step Step) {
	for s := step; s <= StepActivate; s++ {
		delete(c, s)
	}
}

var (
	ErrIllegalTransition  = errors.New("illegal wizard transition")
	ErrMappingsIncomplete = errors.New("all mandatory fields must be mapped")
	ErrNameRequired       = errors.New("job name is required")
	ErrWrongStep          = errors.New("action not available at this step")
	ErrClosed             = errors.New("wizard is closed")
	ErrNoDiscovery        = errors.New("discovery has not been started")
)

// CanTransition reports whether the flow may move from one step to another.
//
//	forward  N → N+1   only once step N is confirmed
//	backward N → N-1   for Discovery through Activate
//
// Filters cannot return to Create because the job already exists, and Done
// is final.
func CanTransition(from, to Step, confirmed Confirmations) bool {
	switch {
	case to == from+1 && from >= StepCreate && from <= StepActivate:
		return confirmed[from]
	case to == from-1 && from >= StepDiscovery && from <= StepActivate:
		return true
	default:
		return false
	}
}

func transitionError(from, to Step) error {
	return fmt.Errorf("%w: %s → %s", ErrIllegalTransition, from, to)
}
