package refresh

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/zenem/zenem/internal/api"
)

// fakeAPI is an in-memory API. Unset funcs return empty values.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	targetOptions func(ctx context.Context) ([]api.TargetOption, error)
	connections   func(ctx context.Context) ([]api.RefreshConnection, error)
	dependencies  func(ctx context.Context) ([]api.RefreshDependency, error)
	health        func(ctx context.Context) ([]api.ConnectionHealth, error)
	suggestions   func(ctx context.Context, hint string) (*api.RefreshSuggestions, error)
	estimate      func(ctx context.Context, sel Selection) (*Estimate, error)
	validate      func(ctx context.Context, sel Selection) (*ValidationResult, error)
	start         func(ctx context.Context, sel Selection) (*api.StartRefreshResponse, error)
	status        func(ctx context.Context, id string) (*StatusResponse, error)
	active        func(ctx context.Context) ([]StatusResponse, error)
	cancel        func(ctx context.Context, id string) error
	stream        func(ctx context.Context, id string) (io.ReadCloser, error)

	estimates []Selection
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) GetRefreshTargetOptions(ctx context.Context) ([]api.TargetOption, error) {
	f.record("targetOptions")
	if f.targetOptions != nil {
		return f.targetOptions(ctx)
	}
	return []api.TargetOption{{Target: api.TargetEpics, Label: "Epics", Available: true}}, nil
}

func (f *fakeAPI) GetRefreshConnections(ctx context.Context) ([]api.RefreshConnection, error) {
	f.record("connections")
	if f.connections != nil {
		return f.connections(ctx)
	}
	return []api.RefreshConnection{{ID: "c1", Name: "Jira", Type: "JIRA", Status: "ACTIVE"}}, nil
}

func (f *fakeAPI) GetRefreshDependencies(ctx context.Context) ([]api.RefreshDependency, error) {
	f.record("dependencies")
	if f.dependencies != nil {
		return f.dependencies(ctx)
	}
	return []api.RefreshDependency{}, nil
}

func (f *fakeAPI) GetConnectionHealth(ctx context.Context) ([]api.ConnectionHealth, error) {
	f.record("health")
	if f.health != nil {
		return f.health(ctx)
	}
	return []api.ConnectionHealth{}, nil
}

func (f *fakeAPI) GetRefreshSuggestions(ctx context.Context, hint string) (*api.RefreshSuggestions, error) {
	f.record("suggestions")
	if f.suggestions != nil {
		return f.suggestions(ctx, hint)
	}
	return &api.RefreshSuggestions{Context: hint}, nil
}

func (f *fakeAPI) EstimateRefresh(ctx context.Context, sel Selection) (*Estimate, error) {
	f.record("estimate")
	f.mu.Lock()
	f.estimates = append(f.estimates, sel)
	f.mu.Unlock()
	if f.estimate != nil {
		return f.estimate(ctx, sel)
	}
	return &Estimate{EstimatedDurationSeconds: 10, EstimatedRecords: len(sel.Targets)}, nil
}

func (f *fakeAPI) ValidateRefresh(ctx context.Context, sel Selection) (*ValidationResult, error) {
	f.record("validate")
	if f.validate != nil {
		return f.validate(ctx, sel)
	}
	return &ValidationResult{Valid: true}, nil
}

func (f *fakeAPI) StartRefresh(ctx context.Context, sel Selection) (*api.StartRefreshResponse, error) {
	f.record("start")
	if f.start != nil {
		return f.start(ctx, sel)
	}
	return &api.StartRefreshResponse{OrchestrationID: "abc", Status: api.StatusPending}, nil
}

func (f *fakeAPI) GetRefreshStatus(ctx context.Context, id string) (*StatusResponse, error) {
	f.record("status")
	if f.status != nil {
		return f.status(ctx, id)
	}
	return &StatusResponse{OrchestrationID: id, Status: api.StatusCompleted, OverallProgress: 100}, nil
}

func (f *fakeAPI) GetActiveRefreshes(ctx context.Context) ([]StatusResponse, error) {
	f.record("active")
	if f.active != nil {
		return f.active(ctx)
	}
	return []StatusResponse{}, nil
}

func (f *fakeAPI) CancelRefresh(ctx context.Context, id string) error {
	f.record("cancel")
	if f.cancel != nil {
		return f.cancel(ctx, id)
	}
	return nil
}

func (f *fakeAPI) OpenProgressStream(ctx context.Context, id string) (io.ReadCloser, error) {
	f.record("stream")
	if f.stream != nil {
		return f.stream(ctx, id)
	}
	return nil, errors.New("no stream")
}

func (f *fakeAPI) lastEstimate() Selection {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.estimates) == 0 {
		return Selection{}
	}
	return f.estimates[len(f.estimates)-1]
}

// blockingSource delivers nothing and returns when ctx is done.
type blockingSource struct {
	started   chan string
	cancelled chan string
}

func newBlockingSource() *blockingSource {
	return &blockingSource{started: make(chan string, 4), cancelled: make(chan string, 4)}
}

func (b *blockingSource) Name() string { return "blocking" }

func (b *blockingSource) Watch(ctx context.Context, id string, onStatus func(StatusResponse)) error {
	b.started <- id
	<-ctx.Done()
	b.cancelled <- id
	return ctx.Err()
}
