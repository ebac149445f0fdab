package api

import "context"

const connectorsPath = "/admin/connectors"

// ListConnectors returns configured connectors, normalized.
func (c *Client) ListConnectors(ctx context.Context, q PageQuery) (*Page[Connector], error) {
	raw, err := list[map[string]any](ctx, c, q.encode(connectorsPath))
	if err != nil {
		return nil, err
	}
	return &Page[Connector]{
		Content:       NormalizeConnectors(raw.Content),
		Page:          raw.Page,
		Size:          raw.Size,
		TotalElements: raw.TotalElements,
		TotalPages:    raw.TotalPages,
		SortBy:        raw.SortBy,
		SortDirection: raw.SortDirection,
	}, nil
}

// ConnectorCatalog lists connector types that can be configured.
func (c *Client) ConnectorCatalog(ctx context.Context) ([]CatalogEntry, error) {
	var out []CatalogEntry
	if err := c.do(ctx, "GET", connectorsPath+"/catalog", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectorHealth returns the health of a connector.
func (c *Client) ConnectorHealth(ctx context.Context, id string) (*ConnectorHealth, error) {
	var out ConnectorHealth
	if err := c.do(ctx, "GET", connectorsPath+"/"+segment(id)+"/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyConnector asks the backend to test a connector's credentials.
func (c *Client) VerifyConnector(ctx context.Context, id string) (*VerifyResult, error) {
	var out VerifyResult
	if err := c.do(ctx, "POST", connectorsPath+"/"+segment(id)+"/verify", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReauthorizeConnector starts a re-authorization flow.
func (c *Client) ReauthorizeConnector(ctx context.Context, id string) (*ReauthorizeResult, error) {
	var out ReauthorizeResult
	if err := c.do(ctx, "POST", connectorsPath+"/"+segment(id)+"/reauthorize", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectorLogs returns a page of connector log entries.
func (c *Client) ConnectorLogs(ctx context.Context, id string, q PageQuery) (*Page[ConnectorLog], error) {
	return list[ConnectorLog](ctx, c, q.encode(connectorsPath+"/"+segment(id)+"/logs"))
}
