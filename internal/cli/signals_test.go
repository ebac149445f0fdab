package cli

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitShutdown(t *testing.T, h *SignalHandler) {
	t.Helper()
	select {
	case <-h.shutdown:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not complete in time")
	}
}

func TestSignalHandler_New(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewSignalHandler(cancel)
	require.NotNil(t, h)
	assert.NotNil(t, h.cancel)
	assert.NotNil(t, h.signals)
	assert.NotNil(t, h.shutdown)
	assert.Empty(t, h.onShutdown)
}

func TestSignalHandler_CancelsContextAndRunsCallbacks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewSignalHandler(cancel)

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		h.OnShutdown(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	h.StartWithNotify(false)
	h.signals <- syscall.SIGTERM
	waitShutdown(t, h)

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSignalHandler_Wait(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewSignalHandler(cancel)
	h.StartWithNotify(false)

	var waited atomic.Bool
	done := make(chan struct{})
	go func() {
		h.Wait()
		waited.Store(true)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, waited.Load(), "Wait should block until a signal arrives")

	h.signals <- syscall.SIGINT
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after shutdown")
	}
}

func TestSignalHandler_StopWithoutSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewSignalHandler(cancel)
	var called atomic.Bool
	h.OnShutdown(func() { called.Store(true) })
	h.StartWithNotify(false)

	h.Stop()
	h.Stop()

	// The listener is gone, so a late signal is ignored
	h.signals <- os.Interrupt
	time.Sleep(20 * time.Millisecond)

	assert.NoError(t, ctx.Err())
	assert.False(t, called.Load())
}

func TestWithSignals_StopCancels(t *testing.T) {
	ctx, stop := withSignals(context.Background())
	require.NoError(t, ctx.Err())

	stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
