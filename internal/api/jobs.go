package api

import "context"

func jobsPath(connectorID string) string {
	return connectorsPath + "/" + segment(connectorID) + "/jobs"
}

func jobPath(connectorID, jobID string) string {
	return jobsPath(connectorID) + "/" + segment(jobID)
}

// ListJobs returns the jobs configured under a connector.
func (c *Client) ListJobs(ctx context.Context, connectorID string) ([]Job, error) {
	var out []Job
	if err := c.do(ctx, "GET", jobsPath(connectorID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJob returns a single job.
func (c *Client) GetJob(ctx context.Context, connectorID, jobID string) (*Job, error) {
	var out Job
	if err := c.do(ctx, "GET", jobPath(connectorID, jobID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateJob creates a draft job.
func (c *Client) CreateJob(ctx context.Context, connectorID string, req CreateJobRequest) (*Job, error) {
	var out Job
	if err := c.do(ctx, "POST", jobsPath(connectorID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJobFilters returns the filters saved on a job.
func (c *Client) GetJobFilters(ctx context.Context, connectorID, jobID string) (*JobFilters, error) {
	var out JobFilters
	if err := c.do(ctx, "GET", jobPath(connectorID, jobID)+"/filters", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFilterOptions returns the selectable filter values for a job.
func (c *Client) GetFilterOptions(ctx context.Context, connectorID, jobID string) (*FilterOptions, error) {
	var out FilterOptions
	if err := c.do(ctx, "GET", jobPath(connectorID, jobID)+"/filter-options", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateJobFilters replaces the filters of a job.
func (c *Client) UpdateJobFilters(ctx context.Context, connectorID, jobID string, f JobFilters) error {
	return c.do(ctx, "PUT", jobPath(connectorID, jobID)+"/filters", f, nil)
}

// TriggerJobDiscovery starts field discovery for a job.
func (c *Client) TriggerJobDiscovery(ctx context.Context, connectorID, jobID string) (*DiscoveryStatus, error) {
	var out DiscoveryStatus
	if err := c.do(ctx, "POST", jobPath(connectorID, jobID)+"/discovery", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDiscoveryStatus returns the current discovery state of a job.
func (c *Client) GetDiscoveryStatus(ctx context.Context, connectorID, jobID string) (*DiscoveryStatus, error) {
	var out DiscoveryStatus
	if err := c.do(ctx, "GET", jobPath(connectorID, jobID)+"/discovery/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDiscoveryResults returns the fields found by discovery.
func (c *Client) GetDiscoveryResults(ctx context.Context, connectorID, jobID string) (*DiscoveryResults, error) {
	var out DiscoveryResults
	if err := c.do(ctx, "GET", jobPath(connectorID, jobID)+"/discovery/results", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJobMappings returns the field mappings saved on a job.
func (c *Client) GetJobMappings(ctx context.Context, connectorID, jobID string) ([]FieldMapping, error) {
	var out []FieldMapping
	if err := c.do(ctx, "GET", jobPath(connectorID, jobID)+"/mappings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMappingSuggestions returns backend-proposed mappings.
func (c *Client) GetMappingSuggestions(ctx context.Context, connectorID, jobID string) ([]MappingSuggestion, error) {
	var out []MappingSuggestion
	if err := c.do(ctx, "GET", jobPath(connectorID, jobID)+"/mappings/suggestions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRequiredFields returns the Zenem fields a job can map.
func (c *Client) GetRequiredFields(ctx context.Context, connectorID, jobID string) ([]RequiredField, error) {
	var out []RequiredField
	if err := c.do(ctx, "GET", jobPath(connectorID, jobID)+"/required-fields", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveJobMappings replaces the field mappings of a job.
func (c *Client) SaveJobMappings(ctx context.Context, connectorID, jobID string, mappings []FieldMapping) error {
	if mappings == nil {
		mappings = []FieldMapping{}
	}
	return c.do(ctx, "PUT", jobPath(connectorID, jobID)+"/mappings", SaveMappingsRequest{Mappings: mappings}, nil)
}

// TestJob runs a sample extraction.
func (c *Client) TestJob(ctx context.Context, connectorID, jobID string) (*JobTestResult, error) {
	var out JobTestResult
	if err := c.do(ctx, "POST", jobPath(connectorID, jobID)+"/test", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviewJob returns sample records without recording a test run.
func (c *Client) PreviewJob(ctx context.Context, connectorID, jobID string) (*JobTestResult, error) {
	var out JobTestResult
	if err := c.do(ctx, "POST", jobPath(connectorID, jobID)+"/preview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActivateJob flips a job to ACTIVE.
func (c *Client) ActivateJob(ctx context.Context, connectorID, jobID string) (*Job, error) {
	var out Job
	if err := c.do(ctx, "POST", jobPath(connectorID, jobID)+"/activate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
