package wizard

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/events"
)

// LoadSuggestions loads the saved mappings, the suggested mappings, the
// required fields and, if missing, the discovery results. Each falls back
// to an empty value on failure so the step still renders.
func (w *Wizard) LoadSuggestions(ctx context.Context) error {
	jobID, err := w.jobAt(StepSuggestions)
	if err != nil {
		return err
	}

	w.mu.Lock()
	needResults := w.state.DiscoveryResults == nil
	w.mu.Unlock()

	var (
		wg          sync.WaitGroup
		mappings    []api.FieldMapping
		suggestions []api.MappingSuggestion
		required    []api.RequiredField
		results     *api.DiscoveryResults
	)
	load := func(what string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				w.log.Warningf("load %s for job %s: %v", what, jobID, err)
			}
		}()
	}
	load("mappings", func() (err error) {
		mappings, err = w.api.GetJobMappings(ctx, w.connectorID, jobID)
		return err
	})
	load("mapping suggestions", func() (err error) {
		suggestions, err = w.api.GetMappingSuggestions(ctx, w.connectorID, jobID)
		return err
	})
	load("required fields", func() (err error) {
		required, err = w.api.GetRequiredFields(ctx, w.connectorID, jobID)
		return err
	})
	if needResults {
		load("discovery results", func() (err error) {
			results, err = w.api.GetDiscoveryResults(ctx, w.connectorID, jobID)
			return err
		})
	}
	wg.Wait()

	if mappings == nil {
		mappings = []api.FieldMapping{}
	}
	if suggestions == nil {
		suggestions = []api.MappingSuggestion{}
	}
	if required == nil {
		required = []api.RequiredField{}
	}

	w.mu.Lock()
	w.state.Mappings = mappings
	w.state.Suggestions = suggestions
	w.state.RequiredFields = required
	if results != nil {
		w.state.DiscoveryResults = results
	}
	w.recomputeMappedLocked()
	w.mu.Unlock()
	return nil
}

// ToggleMapping removes m if the same field pair is already mapped, and
// otherwise maps m.ZenemField to m.SourceField, replacing any previous
// source. The new set is saved before it becomes current.
func (w *Wizard) ToggleMapping(ctx context.Context, m Mapping) error {
	if _, err := w.jobAt(StepSuggestions); err != nil {
		return err
	}

	w.mu.Lock()
	next := slices.Clone(w.state.Mappings)
	w.mu.Unlock()

	i := slices.IndexFunc(next, func(cur Mapping) bool { return cur.ZenemField == m.ZenemField })
	switch {
	case i >= 0 && next[i].SourceField == m.SourceField:
		next = slices.Delete(next, i, i+1)
	case i >= 0:
		next[i] = m
	default:
		next = append(next, m)
	}
	return w.saveMappings(ctx, next)
}

// AcceptSuggestions maps every unmapped field to its suggested source.
func (w *Wizard) AcceptSuggestions(ctx context.Context) error {
	if _, err := w.jobAt(StepSuggestions); err != nil {
		return err
	}

	w.mu.Lock()
	next := slices.Clone(w.state.Mappings)
	suggestions := slices.Clone(w.state.Suggestions)
	w.mu.Unlock()

	mapped := make(map[string]bool, len(next))
	for _, m := range next {
		mapped[m.ZenemField] = true
	}
	for _, s := range suggestions {
		if mapped[s.ZenemField] || s.SourceField == "" {
			continue
		}
		next = append(next, Mapping{ZenemField: s.ZenemField, SourceField: s.SourceField})
		mapped[s.ZenemField] = true
	}
	return w.saveMappings(ctx, next)
}

// HasAllRequiredFieldsMapped reports whether every mandatory required
// field has a mapping.
func (w *Wizard) HasAllRequiredFieldsMapped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return allMandatoryMapped(w.state.RequiredFields, w.state.Mappings)
}

func (w *Wizard) saveMappings(ctx context.Context, mappings []Mapping) error {
	w.mu.Lock()
	jobID := w.state.JobID
	w.mu.Unlock()

	if err := w.api.SaveJobMappings(ctx, w.connectorID, jobID, mappings); err != nil {
		return w.fail(fmt.Errorf("save mappings: %w", err))
	}

	w.mu.Lock()
	w.state.Mappings = mappings
	w.state.Error = ""
	w.recomputeMappedLocked()
	w.mu.Unlock()
	w.emit(events.WizardMappingsSaved, len(mappings))
	return nil
}

func (w *Wizard) recomputeMappedLocked() {
	complete := allMandatoryMapped(w.state.RequiredFields, w.state.Mappings)
	w.state.MappingsComplete = complete
	w.state.Confirmed[StepSuggestions] = complete
}

func allMandatoryMapped(required []api.RequiredField, mappings []Mapping) bool {
	mapped := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if m.SourceField != "" {
			mapped[m.ZenemField] = true
		}
	}
	for _, rf := range required {
		if rf.Mandatory && !mapped[rf.ZenemField] {
			return false
		}
	}
	return true
}
