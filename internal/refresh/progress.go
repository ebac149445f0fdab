package refresh

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/logging"
)

// ProgressSource delivers status updates for one orchestration. Watch
// blocks until the orchestration reaches a terminal status (returning nil),
// ctx is done (returning ctx.Err()) or the source fails.
type ProgressSource interface {
	Watch(ctx context.Context, id string, onStatus func(StatusResponse)) error
	Name() string
}

// ProgressSourceFactory creates a fresh source for each monitored run.
type ProgressSourceFactory func() ProgressSource

// DefaultSources streams over SSE and falls back to polling every interval.
func DefaultSources(a API, interval time.Duration, log *logging.Logger) ProgressSourceFactory {
	return func() ProgressSource {
		return &FallbackSource{
			Primary:  NewSSESource(a, log),
			Fallback: NewPollingSource(a, interval, log),
			Log:      log,
		}
	}
}

// ErrStreamEnded is returned when the event stream closes before the
// orchestration finishes.
var ErrStreamEnded = errors.New("progress stream ended before completion")

// StreamError is an error event sent by the server on the progress stream.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "progress stream error: " + e.Message
}

// SSESource reads server-sent progress events.
type SSESource struct {
	streams StreamOpener
	log     *logging.Logger
}

// NewSSESource creates a source reading from the progress stream endpoint.
func NewSSESource(streams StreamOpener, log *logging.Logger) *SSESource {
	if log == nil {
		log = logging.Get("refresh")
	}
	return &SSESource{streams: streams, log: log}
}

func (s *SSESource) Name() string { return "sse" }

// Watch implements ProgressSource.
func (s *SSESource) Watch(ctx context.Context, id string, onStatus func(StatusResponse)) error {
	body, err := s.streams.OpenProgressStream(ctx, id)
	if err != nil {
		return fmt.Errorf("open progress stream: %w", err)
	}

	closeBody := sync.OnceFunc(func() { body.Close() })
	defer closeBody()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			closeBody()
		case <-stop:
		}
	}()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var frame sseFrame
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			frame.add(line)
			continue
		}
		if frame.empty() {
			continue
		}
		done, err := s.dispatch(frame, onStatus)
		frame = sseFrame{}
		if err != nil || done {
			return err
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read progress stream: %w", err)
	}
	if !frame.empty() {
		if done, err := s.dispatch(frame, onStatus); err != nil || done {
			return err
		}
	}
	return ErrStreamEnded
}

// dispatch handles one complete frame and reports whether the run is over.
func (s *SSESource) dispatch(f sseFrame, onStatus func(StatusResponse)) (bool, error) {
	data := f.payload()
	switch f.event {
	case "error":
		return false, &StreamError{Message: streamErrorMessage(data)}
	case "heartbeat", "ping":
		return false, nil
	}
	if strings.TrimSpace(data) == "" {
		return false, nil
	}

	var status StatusResponse
	if err := api.DecodeWire([]byte(data), &status); err != nil {
		return false, fmt.Errorf("decode %q event: %w", f.event, err)
	}
	s.log.Debugf("sse %s: %s %.0f%%", f.event, status.Status, status.OverallProgress)
	onStatus(status)
	return status.Status.IsTerminal(), nil
}

func streamErrorMessage(data string) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := api.DecodeWire([]byte(data), &body); err == nil && body.Message != "" {
		return body.Message
	}
	if data == "" {
		return "unknown error"
	}
	return data
}

type sseFrame struct {
	event string
	data  []string
}

func (f *sseFrame) add(line string) {
	if strings.HasPrefix(line, ":") {
		return
	}
	field, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")
	switch field {
	case "event":
		f.event = value
	case "data":
		f.data = append(f.data, value)
	}
}

func (f sseFrame) empty() bool {
	return f.event == "" && len(f.data) == 0
}

func (f sseFrame) payload() string {
	return strings.Join(f.data, "\n")
}

// PollingSource fetches the status on a fixed interval.
type PollingSource struct {
	statuses StatusFetcher
	interval time.Duration
	log      *logging.Logger
}

// NewPollingSource creates a source that polls every interval.
func NewPollingSource(statuses StatusFetcher, interval time.Duration, log *logging.Logger) *PollingSource {
	if log == nil {
		log = logging.Get("refresh")
	}
	return &PollingSource{statuses: statuses, interval: interval, log: log}
}

func (p *PollingSource) Name() string { return "polling" }

// Watch implements ProgressSource. Failed polls are logged and retried on
// the next tick; an authentication failure ends the watch.
func (p *PollingSource) Watch(ctx context.Context, id string, onStatus func(StatusResponse)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		status, err := p.statuses.GetRefreshStatus(ctx, id)
		switch {
		case err == nil:
			onStatus(*status)
			if status.Status.IsTerminal() {
				return nil
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, api.ErrAuthentication):
			return err
		default:
			p.log.Warningf("poll status of %s: %v", id, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// FallbackSource runs Primary and switches to Fallback if Primary fails.
type FallbackSource struct {
	Primary  ProgressSource
	Fallback ProgressSource
	Log      *logging.Logger
}

func (f *FallbackSource) Name() string {
	return f.Primary.Name() + "+" + f.Fallback.Name()
}

// Watch implements ProgressSource.
func (f *FallbackSource) Watch(ctx context.Context, id string, onStatus func(StatusResponse)) error {
	err := f.Primary.Watch(ctx, id, onStatus)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if f.Log != nil {
		f.Log.Warningf("%s progress for %s failed, falling back to %s: %v", f.Primary.Name(), id, f.Fallback.Name(), err)
	}
	return f.Fallback.Watch(ctx, id, onStatus)
}
