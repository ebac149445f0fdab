package wizard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/events"
	"github.com/zenem/zenem/internal/logging"
)

type (
	Filters = api.JobFilters
	Mapping = api.FieldMapping
)

// DefaultDiscoveryPollInterval is how often discovery status is polled.
const DefaultDiscoveryPollInterval = 2 * time.Second

// JobAPI is the part of *api.Client the wizard uses.
type JobAPI interface {
	ListJobs(ctx context.Context, connectorID string) ([]api.Job, error)
	CreateJob(ctx context.Context, connectorID string, req api.CreateJobRequest) (*api.Job, error)
	GetJobFilters(ctx context.Context, connectorID, jobID string) (*api.JobFilters, error)
	GetFilterOptions(ctx context.Context, connectorID, jobID string) (*api.FilterOptions, error)
	UpdateJobFilters(ctx context.Context, connectorID, jobID string, f api.JobFilters) error
	TriggerJobDiscovery(ctx context.Context, connectorID, jobID string) (*api.DiscoveryStatus, error)
	GetDiscoveryStatus(ctx context.Context, connectorID, jobID string) (*api.DiscoveryStatus, error)
	GetDiscoveryResults(ctx context.Context, connectorID, jobID string) (*api.DiscoveryResults, error)
	GetJobMappings(ctx context.Context, connectorID, jobID string) ([]api.FieldMapping, error)
	GetMappingSuggestions(ctx context.Context, connectorID, jobID string) ([]api.MappingSuggestion, error)
	GetRequiredFields(ctx context.Context, connectorID, jobID string) ([]api.RequiredField, error)
	SaveJobMappings(ctx context.Context, connectorID, jobID string, mappings []api.FieldMapping) error
	TestJob(ctx context.Context, connectorID, jobID string) (*api.JobTestResult, error)
	PreviewJob(ctx context.Context, connectorID, jobID string) (*api.JobTestResult, error)
	ActivateJob(ctx context.Context, connectorID, jobID string) (*api.Job, error)
}

// Options configures a Wizard.
type Options struct {
	DiscoveryPollInterval time.Duration
	Bus                   *events.Bus
	Logger                *logging.Logger
}

// State is a point-in-time copy of the wizard.
type State struct {
	Step        Step
	ConnectorID string
	JobID       string
	JobName     string
	Confirmed   Confirmations

	FilterOptions *api.FilterOptions
	Filters       Filters

	Discovery        *api.DiscoveryStatus
	DiscoveryResults *api.DiscoveryResults
	Polling          bool

	Mappings         []Mapping
	Suggestions      []api.MappingSuggestion
	RequiredFields   []api.RequiredField
	MappingsComplete bool

	TestResult *api.JobTestResult
	Jobs       []api.Job

	Error  string
	Closed bool
}

// Wizard walks one job through setup. Create and SaveFilters advance to the
// next step on success; the remaining steps show their result and wait for
// Next.
type Wizard struct {
	api         JobAPI
	connectorID string
	opts        Options
	log         *logging.Logger
	bus         *events.Bus

	mu    sync.Mutex
	state State

	pollCancel context.CancelFunc
	pollDone   chan struct{}
	pollErr    error
	pollGen    uint64
}

// New starts the create flow for a new job under connectorID.
func New(a JobAPI, connectorID string, opts Options) *Wizard {
	if opts.DiscoveryPollInterval <= 0 {
		opts.DiscoveryPollInterval = DefaultDiscoveryPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.Get("wizard")
	}
	return &Wizard{
		api:         a,
		connectorID: connectorID,
		opts:        opts,
		log:         opts.Logger,
		bus:         opts.Bus,
		state: State{
			Step:        StepCreate,
			ConnectorID: connectorID,
			Confirmed:   Confirmations{},
		},
	}
}

// ForExistingJob starts the edit flow for job: Create is skipped and the
// saved filters and the filter options are loaded together.
func ForExistingJob(ctx context.Context, a JobAPI, connectorID string, job api.Job, opts Options) (*Wizard, error) {
	w := New(a, connectorID, opts)

	var (
		filters *api.JobFilters
		options *api.FilterOptions
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		filters, err = a.GetJobFilters(gctx, connectorID, job.ID)
		return err
	})
	g.Go(func() (err error) {
		options, err = a.GetFilterOptions(gctx, connectorID, job.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load job %s: %w", job.ID, err)
	}

	w.state.JobID = job.ID
	w.state.JobName = job.Name
	w.state.Confirmed[StepCreate] = true
	w.state.Step = StepFilters
	w.state.Filters = *filters
	w.state.FilterOptions = options
	return w, nil
}

// Snapshot returns a copy of the current state.
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.state
	s.Confirmed = w.state.Confirmed.clone()
	s.Mappings = slices.Clone(w.state.Mappings)
	s.Suggestions = slices.Clone(w.state.Suggestions)
	s.RequiredFields = slices.Clone(w.state.RequiredFields)
	s.Jobs = slices.Clone(w.state.Jobs)
	s.Filters.Projects = slices.Clone(w.state.Filters.Projects)
	s.Filters.IssueTypes = slices.Clone(w.state.Filters.IssueTypes)
	return s
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Step
}

// Create creates the job and advances to Filters.
func (w *Wizard) Create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if err := w.require(StepCreate); err != nil {
		return err
	}
	if name == "" {
		return w.fail(ErrNameRequired)
	}

	job, err := w.api.CreateJob(ctx, w.connectorID, api.CreateJobRequest{Name: name})
	if err != nil {
		return w.fail(fmt.Errorf("create job: %w", err))
	}

	options, err := w.api.GetFilterOptions(ctx, w.connectorID, job.ID)
	if err != nil {
		w.log.Warningf("load filter options for %s: %v", job.ID, err)
	}

	w.mu.Lock()
	w.state.JobID = job.ID
	w.state.JobName = job.Name
	w.state.FilterOptions = options
	w.state.Error = ""
	w.state.Confirmed[StepCreate] = true
	w.mu.Unlock()
	w.emit(events.WizardJobCreated, job)

	return w.transition(StepFilters)
}

// SaveFilters stores the job's filters and advances to Discovery.
func (w *Wizard) SaveFilters(ctx context.Context, f Filters) error {
	jobID, err := w.jobAt(StepFilters)
	if err != nil {
		return err
	}
	if f.Projects == nil {
		f.Projects = []string{}
	}
	if f.IssueTypes == nil {
		f.IssueTypes = []string{}
	}

	if err := w.api.UpdateJobFilters(ctx, w.connectorID, jobID, f); err != nil {
		return w.fail(fmt.Errorf("save filters: %w", err))
	}

	w.mu.Lock()
	w.state.Filters = f
	w.state.Error = ""
	w.state.Confirmed[StepFilters] = true
	w.state.Confirmed.resetFrom(StepDiscovery)
	w.mu.Unlock()
	w.emit(events.WizardFiltersSaved, f)

	return w.transition(StepDiscovery)
}

// RunTest runs a sample extraction of the job.
func (w *Wizard) RunTest(ctx context.Context) error {
	return w.test(ctx, w.api.TestJob)
}

// Preview fetches sample records of the job.
func (w *Wizard) Preview(ctx context.Context) error {
	return w.test(ctx, w.api.PreviewJob)
}

func (w *Wizard) test(ctx context.Context, run func(context.Context, string, string) (*api.JobTestResult, error)) error {
	jobID, err := w.jobAt(StepTest)
	if err != nil {
		return err
	}
	result, err := run(ctx, w.connectorID, jobID)
	if err != nil {
		return w.fail(fmt.Errorf("test job: %w", err))
	}

	w.mu.Lock()
	w.state.TestResult = result
	w.state.Error = ""
	w.state.Confirmed[StepTest] = true
	w.mu.Unlock()
	w.emit(events.WizardTestCompleted, *result)
	return nil
}

// Activate makes the job active, reloads the connector's job list and
// finishes the flow.
func (w *Wizard) Activate(ctx context.Context) error {
	jobID, err := w.jobAt(StepActivate)
	if err != nil {
		return err
	}
	job, err := w.api.ActivateJob(ctx, w.connectorID, jobID)
	if err != nil {
		return w.fail(fmt.Errorf("activate job: %w", err))
	}

	jobs, err := w.api.ListJobs(ctx, w.connectorID)
	if err != nil {
		w.log.Warningf("reload jobs of %s: %v", w.connectorID, err)
	}

	w.mu.Lock()
	if jobs != nil {
		w.state.Jobs = jobs
	}
	w.state.Error = ""
	w.state.Confirmed[StepActivate] = true
	w.mu.Unlock()
	w.emit(events.WizardActivated, *job)

	return w.transition(StepDone)
}

// Next moves one step forward.
func (w *Wizard) Next() error {
	return w.transition(w.Step() + 1)
}

// Back moves one step backward.
func (w *Wizard) Back() error {
	return w.transition(w.Step() - 1)
}

// GoTo moves to an adjacent step.
func (w *Wizard) GoTo(step Step) error {
	return w.transition(step)
}

// Close stops discovery polling. Results arriving afterwards are ignored
// and every further action fails with ErrClosed.
func (w *Wizard) Close() {
	w.mu.Lock()
	w.state.Closed = true
	w.mu.Unlock()
	w.stopPolling()
}

func (w *Wizard) transition(to Step) error {
	w.mu.Lock()
	if w.state.Closed {
		w.mu.Unlock()
		return ErrClosed
	}
	from := w.state.Step
	if !CanTransition(from, to, w.state.Confirmed) {
		w.mu.Unlock()
		if from == StepSuggestions && to == StepTest {
			return ErrMappingsIncomplete
		}
		return transitionError(from, to)
	}
	w.state.Step = to
	w.mu.Unlock()

	if from == StepDiscovery {
		w.stopPolling()
	}
	w.log.Debugf("connector %s: %s → %s", w.connectorID, from, to)
	w.emit(events.WizardStepChanged, to.String())
	return nil
}

// require checks the wizard is open and at step.
func (w *Wizard) require(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Closed {
		return ErrClosed
	}
	if w.state.Step != step {
		return fmt.Errorf("%w: at %s, need %s", ErrWrongStep, w.state.Step, step)
	}
	return nil
}

// jobAt is require plus the job ID.
func (w *Wizard) jobAt(step Step) (string, error) {
	if err := w.require(step); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.JobID, nil
}

func (w *Wizard) fail(err error) error {
	w.mu.Lock()
	w.state.Error = err.Error()
	jobID := w.state.JobID
	w.mu.Unlock()
	if !errors.Is(err, ErrNameRequired) {
		w.log.Warningf("job %s: %v", jobID, err)
	}
	w.bus.Emit(events.NewEvent(events.WizardFailed, jobID).WithError(err))
	return err
}

func (w *Wizard) emit(t events.EventType, payload any) {
	w.mu.Lock()
	jobID := w.state.JobID
	w.mu.Unlock()
	w.bus.Emit(events.NewEvent(t, jobID).WithPayload(payload))
}
