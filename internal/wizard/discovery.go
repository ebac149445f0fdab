package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/events"
)

// DiscoveryError reports a discovery run that ended in FAILED.
type DiscoveryError struct {
	Message string
}

func (e *DiscoveryError) Error() string {
	if e.Message == "" {
		return "field discovery failed"
	}
	return "field discovery failed: " + e.Message
}

// EnterDiscovery starts or resumes field discovery. A discovery that is
// already running is polled rather than triggered again, and a completed
// one only has its results fetched.
func (w *Wizard) EnterDiscovery(ctx context.Context) error {
	jobID, err := w.jobAt(StepDiscovery)
	if err != nil {
		return err
	}

	w.mu.Lock()
	polling := w.pollCancel != nil
	w.mu.Unlock()
	if polling {
		return nil
	}

	status, err := w.api.GetDiscoveryStatus(ctx, w.connectorID, jobID)
	if err != nil {
		return w.fail(fmt.Errorf("discovery status: %w", err))
	}
	w.setDiscovery(status)

	if status.Status == api.DiscoveryCompleted {
		return w.completeDiscovery(ctx, jobID)
	}

	// A run in flight supersedes any earlier results.
	w.mu.Lock()
	w.state.Confirmed.resetFrom(StepDiscovery)
	w.state.DiscoveryResults = nil
	w.mu.Unlock()

	switch status.Status {
	case api.DiscoveryRunning:
		w.log.Debugf("job %s: resuming running discovery", jobID)
	default:
		started, err := w.api.TriggerJobDiscovery(ctx, w.connectorID, jobID)
		if err != nil {
			return w.fail(fmt.Errorf("trigger discovery: %w", err))
		}
		w.setDiscovery(started)
	}

	w.startPolling(ctx, jobID)
	return nil
}

// WaitDiscovery blocks until the current discovery finishes and returns
// its outcome.
func (w *Wizard) WaitDiscovery(ctx context.Context) error {
	w.mu.Lock()
	done := w.pollDone
	confirmed := w.state.Confirmed[StepDiscovery]
	w.mu.Unlock()

	if done == nil {
		if confirmed {
			return nil
		}
		return ErrNoDiscovery
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pollErr
}

func (w *Wizard) startPolling(ctx context.Context, jobID string) {
	w.mu.Lock()
	pctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.pollGen++
	gen := w.pollGen
	w.pollCancel = cancel
	w.pollDone = done
	w.pollErr = nil
	w.state.Polling = true
	w.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		err := w.poll(pctx, gen, jobID)

		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.pollGen {
			return
		}
		w.pollErr = err
		w.pollCancel = nil
		w.state.Polling = false
	}()
}

func (w *Wizard) poll(ctx context.Context, gen uint64, jobID string) error {
	ticker := time.NewTicker(w.opts.DiscoveryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		status, err := w.api.GetDiscoveryStatus(ctx, w.connectorID, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, api.ErrAuthentication) {
				return w.fail(fmt.Errorf("discovery status: %w", err))
			}
			w.log.Warningf("poll discovery of %s: %v", jobID, err)
			continue
		}
		if !w.current(gen) {
			return nil
		}
		w.setDiscovery(status)

		switch status.Status {
		case api.DiscoveryCompleted:
			return w.completeDiscovery(ctx, jobID)
		case api.DiscoveryFailed:
			err := &DiscoveryError{Message: status.Error}
			w.fail(err)
			w.emit(events.WizardDiscoveryFailed, *status)
			return err
		}
	}
}

func (w *Wizard) completeDiscovery(ctx context.Context, jobID string) error {
	results, err := w.api.GetDiscoveryResults(ctx, w.connectorID, jobID)
	if err != nil {
		return w.fail(fmt.Errorf("discovery results: %w", err))
	}

	w.mu.Lock()
	if w.state.Closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.state.DiscoveryResults = results
	w.state.Confirmed[StepDiscovery] = true
	w.state.Error = ""
	w.mu.Unlock()
	w.emit(events.WizardDiscoveryCompleted, len(results.Fields))
	return nil
}

func (w *Wizard) setDiscovery(status *api.DiscoveryStatus) {
	w.mu.Lock()
	w.state.Discovery = status
	w.mu.Unlock()
	w.emit(events.WizardDiscoveryProgress, *status)
}

func (w *Wizard) current(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return gen == w.pollGen && !w.state.Closed
}

// stopPolling cancels discovery polling and waits for it to exit.
func (w *Wizard) stopPolling() {
	w.mu.Lock()
	cancel, done := w.pollCancel, w.pollDone
	w.pollCancel, w.pollDone = nil, nil
	w.pollGen++
	w.state.Polling = false
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
