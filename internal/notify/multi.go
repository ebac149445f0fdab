package notify

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Multi delivers every toast to each configured backend.
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a Multi over the non-nil backends.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, nt := range notifiers {
		if nt != nil {
			m.notifiers = append(m.notifiers, nt)
		}
	}
	return m
}

// Notify delivers n to all backends concurrently. A failing backend does
// not stop delivery to the others; the returned error joins every failure,
// each prefixed with the backend name.
func (m *Multi) Notify(ctx context.Context, n Notification) error {
	failures := make([]error, len(m.notifiers))

	var g errgroup.Group
	for i, nt := range m.notifiers {
		g.Go(func() error {
			if err := nt.Notify(ctx, n); err != nil {
				failures[i] = fmt.Errorf("%s: %w", nt.Name(), err)
			}
			return nil
		})
	}
	g.Wait()

	return errors.Join(failures...)
}

// Name returns "multi"
func (m *Multi) Name() string {
	return "multi"
}
