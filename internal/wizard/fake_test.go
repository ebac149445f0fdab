package wizard

import (
	"context"
	"sync"

	"github.com/zenem/zenem/internal/api"
)

// fakeJobAPI scripts the job endpoints. Discovery statuses are served from
// a queue; the last entry repeats.
type fakeJobAPI struct {
	mu    sync.Mutex
	calls map[string]int

	statuses []api.DiscoveryStatus

	createErr   error
	filtersErr  error
	mappingsErr error
	requiredErr error
	saveErr     error

	filters   api.JobFilters
	mappings  []api.FieldMapping
	required  []api.RequiredField
	suggested []api.MappingSuggestion
	saved     [][]api.FieldMapping
}

func newFakeJobAPI() *fakeJobAPI {
	return &fakeJobAPI{
		calls:    make(map[string]int),
		statuses: []api.DiscoveryStatus{{Status: api.DiscoveryNotStarted}},
		required: []api.RequiredField{
			{ZenemField: "epicName", Label: "Epic name", Mandatory: true},
			{ZenemField: "startDate", Label: "Start date", Mandatory: true},
			{ZenemField: "color", Label: "Color", Mandatory: false},
		},
		suggested: []api.MappingSuggestion{
			{ZenemField: "epicName", SourceField: "summary", Confidence: 0.95},
			{ZenemField: "startDate", SourceField: "customfield_10015", Confidence: 0.7},
		},
	}
}

func (f *fakeJobAPI) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeJobAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeJobAPI) ListJobs(ctx context.Context, connectorID string) ([]api.Job, error) {
	f.record("listJobs")
	return []api.Job{{ID: "job-1", Name: "Epics sync", Status: api.JobStatusActive}}, nil
}

func (f *fakeJobAPI) CreateJob(ctx context.Context, connectorID string, req api.CreateJobRequest) (*api.Job, error) {
	f.record("createJob")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &api.Job{ID: "job-1", ConnectorID: connectorID, Name: req.Name, Status: api.JobStatusDraft}, nil
}

func (f *fakeJobAPI) GetJobFilters(ctx context.Context, connectorID, jobID string) (*api.JobFilters, error) {
	f.record("getFilters")
	if f.filtersErr != nil {
		return nil, f.filtersErr
	}
	out := f.filters
	return &out, nil
}

func (f *fakeJobAPI) GetFilterOptions(ctx context.Context, connectorID, jobID string) (*api.FilterOptions, error) {
	f.record("filterOptions")
	return &api.FilterOptions{
		Projects:   []api.FilterOption{{Value: "ZEN", Label: "Zenem"}},
		IssueTypes: []api.FilterOption{{Value: "Epic", Label: "Epic"}},
	}, nil
}

func (f *fakeJobAPI) UpdateJobFilters(ctx context.Context, connectorID, jobID string, filters api.JobFilters) error {
	f.record("updateFilters")
	f.mu.Lock()
	f.filters = filters
	f.mu.Unlock()
	return nil
}

func (f *fakeJobAPI) TriggerJobDiscovery(ctx context.Context, connectorID, jobID string) (*api.DiscoveryStatus, error) {
	f.record("trigger")
	return &api.DiscoveryStatus{Status: api.DiscoveryRunning}, nil
}

func (f *fakeJobAPI) GetDiscoveryStatus(ctx context.Context, connectorID, jobID string) (*api.DiscoveryStatus, error) {
	f.record("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return &s, nil
}

func (f *fakeJobAPI) GetDiscoveryResults(ctx context.Context, connectorID, jobID string) (*api.DiscoveryResults, error) {
	f.record("results")
	return &api.DiscoveryResults{Fields: []api.DiscoveredField{
		{SourceField: "summary", Name: "Summary", Type: "string"},
		{SourceField: "customfield_10015", Name: "Start date", Type: "date", Custom: true},
	}}, nil
}

func (f *fakeJobAPI) GetJobMappings(ctx context.Context, connectorID, jobID string) ([]api.FieldMapping, error) {
	f.record("mappings")
	if f.mappingsErr != nil {
		return nil, f.mappingsErr
	}
	return f.mappings, nil
}

func (f *fakeJobAPI) GetMappingSuggestions(ctx context.Context, connectorID, jobID string) ([]api.MappingSuggestion, error) {
	f.record("suggestions")
	return f.suggested, nil
}

func (f *fakeJobAPI) GetRequiredFields(ctx context.Context, connectorID, jobID string) ([]api.RequiredField, error) {
	f.record("required")
	if f.requiredErr != nil {
		return nil, f.requiredErr
	}
	return f.required, nil
}

func (f *fakeJobAPI) SaveJobMappings(ctx context.Context, connectorID, jobID string, mappings []api.FieldMapping) error {
	f.record("save")
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	f.saved = append(f.saved, mappings)
	f.mu.Unlock()
	return nil
}

func (f *fakeJobAPI) TestJob(ctx context.Context, connectorID, jobID string) (*api.JobTestResult, error) {
	f.record("test")
	return &api.JobTestResult{Success: true, RecordsFound: 12}, nil
}

func (f *fakeJobAPI) PreviewJob(ctx context.Context, connectorID, jobID string) (*api.JobTestResult, error) {
	f.record("preview")
	return &api.JobTestResult{Success: true, RecordsFound: 3}, nil
}

func (f *fakeJobAPI) ActivateJob(ctx context.Context, connectorID, jobID string) (*api.Job, error) {
	f.record("activate")
	return &api.Job{ID: jobID, Status: api.JobStatusActive}, nil
}
