package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/zenem/zenem/internal/logging"
)

// SignalHandler cancels a command's context on interrupt and runs cleanup
// callbacks, so a long-running watch or wizard can stop its pollers first.
type SignalHandler struct {
	signals    chan os.Signal
	shutdown   chan struct{}
	stopCh     chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	cancel     context.CancelFunc
	onShutdown []func()
	mu         sync.Mutex
	log        *logging.Logger
}

// NewSignalHandler creates a signal handler with the given context cancel
func NewSignalHandler(cancel context.CancelFunc) *SignalHandler {
	return &SignalHandler{
		signals:  make(chan os.Signal, 1),
		shutdown: make(chan struct{}),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		cancel:   cancel,
		log:      logging.Get("cli"),
	}
}

// Start begins listening for SIGINT and SIGTERM
func (h *SignalHandler) Start() {
	h.StartWithNotify(true)
}

// StartWithNotify begins listening for signals, optionally registering with OS signal handling.
// Pass false for notify in unit tests to avoid global signal state interactions.
func (h *SignalHandler) StartWithNotify(notify bool) {
	if notify {
		signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	}

	started := make(chan struct{})
	go func() {
		defer close(h.done)
		close(started)

		select {
		case sig := <-h.signals:
			h.log.Debugf("received signal: %v", sig)
			if h.cancel != nil {
				h.cancel()
			}

			h.mu.Lock()
			callbacks := append([]func(){}, h.onShutdown...)
			h.mu.Unlock()
			for _, fn := range callbacks {
				fn()
			}

			close(h.shutdown)
		case <-h.stopCh:
		}
	}()

	<-started
}

// OnShutdown registers a callback to run on shutdown, in registration order
func (h *SignalHandler) OnShutdown(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onShutdown = append(h.onShutdown, fn)
}

// Wait blocks until shutdown is triggered
func (h *SignalHandler) Wait() {
	<-h.shutdown
}

// Stop stops listening. It waits briefly for an in-flight shutdown to finish.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	select {
	case <-h.done:
	case <-time.After(100 * time.Millisecond):
	}
}

// withSignals returns a context cancelled on interrupt and a stop function
func withSignals(parent context.Context, onShutdown ...func()) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	h := NewSignalHandler(cancel)
	for _, fn := range onShutdown {
		h.OnShutdown(fn)
	}
	h.Start()
	return ctx, func() {
		h.Stop()
		cancel()
	}
}
