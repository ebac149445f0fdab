package refresh

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/events"
	"github.com/zenem/zenem/internal/logging"
)

// Default timings.
const (
	DefaultEstimateDelay = 500 * time.Millisecond
	DefaultPollInterval  = 3 * time.Second
	DefaultBadgeInterval = 30 * time.Second
)

// Options configures a Controller. Zero values take the defaults.
type Options struct {
	EstimateDelay time.Duration
	PollInterval  time.Duration
	BadgeInterval time.Duration

	// Sources creates the progress source for each monitored run.
	// Defaults to SSE with a polling fallback.
	Sources ProgressSourceFactory

	// Bus receives a refresh.* event after every state change. May be nil.
	Bus *events.Bus

	Logger *logging.Logger
}

// Controller holds the state of one refresh UI surface. Controllers never
// share state; each consumer creates its own. Operations report failures
// through State.Error instead of returning them.
type Controller struct {
	api  API
	opts Options
	log  *logging.Logger
	bus  *events.Bus

	mu    sync.Mutex
	state State

	estimateTimer *time.Timer
	estimateToken uint64

	suggestionsApplied bool

	watchCancel context.CancelFunc
	watchDone   chan struct{}
	watchGen    uint64

	badgeCancel context.CancelFunc
	shutdown    bool
}

// NewController creates a controller backed by a.
func NewController(a API, opts Options) *Controller {
	if opts.EstimateDelay <= 0 {
		opts.EstimateDelay = DefaultEstimateDelay
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.BadgeInterval <= 0 {
		opts.BadgeInterval = DefaultBadgeInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.Get("refresh")
	}
	if opts.Sources == nil {
		opts.Sources = DefaultSources(a, opts.PollInterval, opts.Logger)
	}
	return &Controller{
		api:  a,
		opts: opts,
		log:  opts.Logger,
		bus:  opts.Bus,
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Run refreshes the active refresh count now and then every BadgeInterval
// until ctx is done or Shutdown is called.
func (c *Controller) Run(ctx context.Context) {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	if c.badgeCancel != nil {
		c.badgeCancel()
	}
	c.badgeCancel = cancel
	c.mu.Unlock()
	defer cancel()

	ticker := time.NewTicker(c.opts.BadgeInterval)
	defer ticker.Stop()

	for {
		c.refreshBadge(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Open loads everything the selection view needs. Target options and
// connections are required; dependencies, connection health and suggestions
// fall back to empty values when they cannot be loaded.
func (c *Controller) Open(ctx context.Context, contextHint string) {
	c.mu.Lock()
	c.state.IsOpen = true
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshOpened, "").WithPayload(contextHint))

	var (
		options      []api.TargetOption
		connections  []api.RefreshConnection
		dependencies []api.RefreshDependency
		health       []api.ConnectionHealth
		suggestions  *api.RefreshSuggestions
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		options, err = c.api.GetRefreshTargetOptions(gctx)
		return err
	})
	g.Go(func() (err error) {
		connections, err = c.api.GetRefreshConnections(gctx)
		return err
	})
	g.Go(func() error {
		deps, err := c.api.GetRefreshDependencies(gctx)
		if err != nil {
			c.log.Warningf("load refresh dependencies: %v", err)
			deps = []api.RefreshDependency{}
		}
		dependencies = deps
		return nil
	})
	g.Go(func() error {
		h, err := c.api.GetConnectionHealth(gctx)
		if err != nil {
			c.log.Warningf("load connection health: %v", err)
			h = []api.ConnectionHealth{}
		}
		health = h
		return nil
	})
	if contextHint != "" {
		g.Go(func() error {
			s, err := c.api.GetRefreshSuggestions(gctx, contextHint)
			if err != nil {
				c.log.Warningf("load refresh suggestions for %q: %v", contextHint, err)
				return nil
			}
			suggestions = s
			return nil
		})
	}
	err := g.Wait()

	c.mu.Lock()
	c.state.Loading = false
	if err != nil {
		c.state.Error = err.Error()
		c.mu.Unlock()
		c.emit(events.NewEvent(events.RefreshFailed, "").WithError(err))
		return
	}
	c.state.TargetOptions = options
	c.state.Connections = connections
	c.state.Dependencies = dependencies
	c.state.Health = health
	c.state.Suggestions = suggestions

	var suggested Selection
	apply := suggestions != nil && len(suggestions.SuggestedTargets) > 0 && !c.suggestionsApplied
	if apply {
		c.suggestionsApplied = true
		suggested = cloneSelection(c.state.Selection)
		suggested.Targets = append([]Target(nil), suggestions.SuggestedTargets...)
	}
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshLoaded, ""))

	if apply {
		c.UpdateSelection(ctx, suggested)
	}
}

// UpdateSelection stores sel and schedules an estimate after EstimateDelay.
// Each call cancels the previously scheduled estimate, and a response that
// arrives after a newer selection was made is dropped. An empty target list
// clears the estimate without calling the backend.
func (c *Controller) UpdateSelection(ctx context.Context, sel Selection) {
	sel = cloneSelection(sel)

	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	c.state.Selection = sel
	c.state.Validation = nil
	if c.estimateTimer != nil {
		c.estimateTimer.Stop()
		c.estimateTimer = nil
	}
	c.estimateToken++
	token := c.estimateToken

	if len(sel.Targets) == 0 {
		c.state.Estimate = nil
		c.state.Estimating = false
		c.mu.Unlock()
		c.emit(events.NewEvent(events.RefreshSelectionChanged, "").WithPayload(sel))
		return
	}

	c.estimateTimer = time.AfterFunc(c.opts.EstimateDelay, func() {
		c.estimate(ctx, token, sel)
	})
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshSelectionChanged, "").WithPayload(sel))
}

func (c *Controller) estimate(ctx context.Context, token uint64, sel Selection) {
	c.mu.Lock()
	if token != c.estimateToken || c.shutdown || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.state.Estimating = true
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshEstimating, ""))

	est, err := c.api.EstimateRefresh(ctx, sel)

	c.mu.Lock()
	if token != c.estimateToken {
		c.mu.Unlock()
		c.log.Debugf("discarding stale estimate %d", token)
		return
	}
	c.state.Estimating = false
	if err != nil {
		c.state.Estimate = nil
		c.state.Error = err.Error()
		c.mu.Unlock()
		c.log.Warningf("estimate refresh: %v", err)
		c.emit(events.NewEvent(events.RefreshFailed, "").WithError(err))
		return
	}
	c.state.Estimate = est
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshEstimated, "").WithPayload(*est))
}

// Validate checks the current selection with the backend. An empty selection
// fails locally without a request.
func (c *Controller) Validate(ctx context.Context) *ValidationResult {
	c.mu.Lock()
	sel := cloneSelection(c.state.Selection)
	c.mu.Unlock()

	var result *ValidationResult
	if len(sel.Targets) == 0 {
		result = &ValidationResult{Valid: false, Errors: []string{NoTargetsMessage}, Warnings: []string{}}
	} else {
		v, err := c.api.ValidateRefresh(ctx, sel)
		if err != nil {
			v = &ValidationResult{Valid: false, Errors: []string{err.Error()}, Warnings: []string{}}
		}
		result = v
	}

	c.mu.Lock()
	c.state.Validation = result
	if !result.Valid {
		c.state.Error = strings.Join(result.Errors, ", ")
		if c.state.Error == "" {
			c.state.Error = ValidationFailedMessage
		}
	} else {
		c.state.Error = ""
	}
	out := *result
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshValidated, "").WithPayload(out))
	return &out
}

// Start validates the selection and starts an orchestration, returning its
// ID or "" if it could not be started. The new run is monitored right away.
func (c *Controller) Start(ctx context.Context) string {
	c.mu.Lock()
	c.state.Starting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.state.Starting = false
		c.mu.Unlock()
	}()

	if v := c.Validate(ctx); !v.Valid {
		return ""
	}

	c.mu.Lock()
	sel := cloneSelection(c.state.Selection)
	c.mu.Unlock()

	resp, err := c.api.StartRefresh(ctx, sel)
	if err != nil {
		c.fail(err)
		return ""
	}
	id := resp.OrchestrationID

	c.mu.Lock()
	c.state.CurrentRefresh = &CurrentRefresh{
		OrchestrationID: id,
		Status:          &StatusResponse{OrchestrationID: id, Status: resp.Status},
	}
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshStarted, id).WithPayload(sel))

	c.Monitor(ctx, id)
	c.refreshBadge(ctx)
	return id
}

// Monitor follows an orchestration, replacing any run being monitored.
func (c *Controller) Monitor(ctx context.Context, orchestrationID string) {
	c.stopWatch()

	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	wctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.watchGen++
	gen := c.watchGen
	c.watchCancel = cancel
	c.watchDone = done
	if c.state.CurrentRefresh == nil || c.state.CurrentRefresh.OrchestrationID != orchestrationID {
		c.state.CurrentRefresh = &CurrentRefresh{OrchestrationID: orchestrationID}
	}
	source := c.opts.Sources()
	c.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		finished := false
		err := source.Watch(wctx, orchestrationID, func(status StatusResponse) {
			if finished {
				return
			}
			c.mu.Lock()
			if gen != c.watchGen {
				c.mu.Unlock()
				return
			}
			st := status
			c.state.CurrentRefresh = &CurrentRefresh{OrchestrationID: orchestrationID, Status: &st}
			c.mu.Unlock()
			c.emit(events.NewEvent(events.RefreshProgress, orchestrationID).WithPayload(status))

			if status.Status.IsTerminal() {
				finished = true
				c.emit(events.NewEvent(events.RefreshCompleted, orchestrationID).WithPayload(status))
				c.refreshBadge(wctx)
			}
		})
		if err != nil && wctx.Err() == nil && !finished {
			c.log.Warningf("monitor %s via %s: %v", orchestrationID, source.Name(), err)
			c.mu.Lock()
			if gen != c.watchGen {
				c.mu.Unlock()
				return
			}
			c.markFailed(orchestrationID, err)
			c.mu.Unlock()
			c.emit(events.NewEvent(events.RefreshFailed, orchestrationID).WithError(err))
		}
	}()
}

// Cancel asks the backend to stop an orchestration and stops monitoring it.
func (c *Controller) Cancel(ctx context.Context, orchestrationID string) bool {
	if err := c.api.CancelRefresh(ctx, orchestrationID); err != nil {
		c.fail(err)
		return false
	}
	c.stopWatch()

	c.mu.Lock()
	c.state.CurrentRefresh = nil
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshCancelled, orchestrationID))

	c.refreshBadge(ctx)
	return true
}

// Close resets the selection view. A run being monitored keeps being
// monitored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.estimateTimer != nil {
		c.estimateTimer.Stop()
		c.estimateTimer = nil
	}
	c.estimateToken++
	c.suggestionsApplied = false
	c.state.IsOpen = false
	c.state.Loading = false
	c.state.Selection = Selection{}
	c.state.Estimate = nil
	c.state.Estimating = false
	c.state.Validation = nil
	c.state.Suggestions = nil
	c.state.Error = ""
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshClosed, ""))
}

// Shutdown stops the badge loop, any scheduled estimate and any monitored
// run. The controller is unusable afterwards.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	if c.estimateTimer != nil {
		c.estimateTimer.Stop()
		c.estimateTimer = nil
	}
	c.estimateToken++
	badgeCancel := c.badgeCancel
	c.badgeCancel = nil
	c.mu.Unlock()

	if badgeCancel != nil {
		badgeCancel()
	}
	c.stopWatch()
}

// stopWatch cancels the monitored run and waits for its goroutine to exit.
func (c *Controller) stopWatch() {
	c.mu.Lock()
	cancel, done := c.watchCancel, c.watchDone
	c.watchCancel, c.watchDone = nil, nil
	c.watchGen++
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// refreshBadge updates the active refresh count. Failures are only logged.
func (c *Controller) refreshBadge(ctx context.Context) {
	active, err := c.api.GetActiveRefreshes(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Warningf("load active refreshes: %v", err)
		}
		return
	}
	c.mu.Lock()
	c.state.ActiveCount = len(active)
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshBadge, "").WithPayload(len(active)))
}

// markFailed records that a run can no longer be followed so consumers stop
// waiting on it. Progress seen so far is kept. Callers hold c.mu.
func (c *Controller) markFailed(orchestrationID string, err error) {
	st := StatusResponse{OrchestrationID: orchestrationID}
	if cur := c.state.CurrentRefresh; cur != nil && cur.Status != nil {
		st = cloneStatus(*cur.Status)
	}
	st.Status = api.StatusFailed
	st.Errors = append(st.Errors, err.Error())
	c.state.CurrentRefresh = &CurrentRefresh{OrchestrationID: orchestrationID, Status: &st}
	c.state.Error = err.Error()
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	c.state.Error = err.Error()
	c.mu.Unlock()
	c.emit(events.NewEvent(events.RefreshFailed, "").WithError(err))
}

func (c *Controller) emit(e events.Event) {
	c.bus.Emit(e)
}
