package api

import (
	"context"
	"io"
	"net/url"
)

const refreshPath = "/refresh"

// GetRefreshTargetOptions lists the targets the user can refresh.
func (c *Client) GetRefreshTargetOptions(ctx context.Context) ([]TargetOption, error) {
	var out []TargetOption
	if err := c.do(ctx, "GET", refreshPath+"/targets/options", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRefreshConnections lists the connections a refresh can pull from.
func (c *Client) GetRefreshConnections(ctx context.Context) ([]RefreshConnection, error) {
	var raw []map[string]any
	if err := c.do(ctx, "GET", refreshPath+"/connections", nil, &raw); err != nil {
		return nil, err
	}
	return NormalizeConnectors(raw), nil
}

// GetRefreshDependencies returns which targets depend on which.
func (c *Client) GetRefreshDependencies(ctx context.Context) ([]RefreshDependency, error) {
	var out []RefreshDependency
	if err := c.do(ctx, "GET", refreshPath+"/dependencies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetConnectionHealth returns the health of every refresh connection.
func (c *Client) GetConnectionHealth(ctx context.Context) ([]ConnectionHealth, error) {
	var out []ConnectionHealth
	if err := c.do(ctx, "GET", refreshPath+"/connection-health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRefreshSuggestions returns targets the backend recommends for a UI context.
func (c *Client) GetRefreshSuggestions(ctx context.Context, hint string) (*RefreshSuggestions, error) {
	var out RefreshSuggestions
	path := refreshPath + "/suggestions?context=" + url.QueryEscape(hint)
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EstimateRefresh estimates the duration and volume of a refresh.
func (c *Client) EstimateRefresh(ctx context.Context, sel RefreshSelection) (*RefreshEstimate, error) {
	var out RefreshEstimate
	if err := c.do(ctx, "POST", refreshPath+"/estimate", sel.wire(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateRefresh checks a selection without starting anything.
func (c *Client) ValidateRefresh(ctx context.Context, sel RefreshSelection) (*RefreshValidation, error) {
	var out RefreshValidation
	if err := c.do(ctx, "POST", refreshPath+"/validate", sel.wire(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartRefresh starts an orchestration and returns its ID.
func (c *Client) StartRefresh(ctx context.Context, sel RefreshSelection) (*StartRefreshResponse, error) {
	var out StartRefreshResponse
	if err := c.do(ctx, "POST", refreshPath+"/start", sel.wire(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRefreshStatus returns the current status of an orchestration.
func (c *Client) GetRefreshStatus(ctx context.Context, id string) (*RefreshStatusResponse, error) {
	var out RefreshStatusResponse
	if err := c.do(ctx, "GET", refreshPath+"/status/"+segment(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetActiveRefreshes lists orchestrations that have not finished.
func (c *Client) GetActiveRefreshes(ctx context.Context) ([]RefreshStatusResponse, error) {
	var out []RefreshStatusResponse
	if err := c.do(ctx, "GET", refreshPath+"/active", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelRefresh asks the backend to stop an orchestration.
func (c *Client) CancelRefresh(ctx context.Context, id string) error {
	return c.do(ctx, "POST", refreshPath+"/"+segment(id)+"/cancel", nil, nil)
}

// ProgressURL is the absolute URL of the progress event stream for id.
func (c *Client) ProgressURL(id string) string {
	return c.baseURL + progressPath(id)
}

// OpenProgressStream opens the server-sent event stream for an orchestration.
// The caller must close the returned body.
func (c *Client) OpenProgressStream(ctx context.Context, id string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, "GET", progressPath(id), nil, "text/event-stream")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func progressPath(id string) string {
	return refreshPath + "/progress/" + segment(id)
}

// wire fills nil slices so the backend always sees arrays.
func (s RefreshSelection) wire() RefreshSelection {
	if s.Targets == nil {
		s.Targets = []RefreshTarget{}
	}
	if s.ConnectionTypes == nil {
		s.ConnectionTypes = []string{}
	}
	if s.ConnectionIDs == nil {
		s.ConnectionIDs = []string{}
	}
	return s
}
