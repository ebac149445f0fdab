package api

import "context"

// GetPrimaryRoles returns primary roles, served from the metadata cache.
func (c *Client) GetPrimaryRoles(ctx context.Context) ([]Role, error) {
	return cached[Role](ctx, c, CacheKeyPrimaryRoles, "/roles/primary")
}

// GetSecondaryRoles returns secondary roles, served from the metadata cache.
func (c *Client) GetSecondaryRoles(ctx context.Context) ([]Role, error) {
	return cached[Role](ctx, c, CacheKeySecondaryRoles, "/roles/secondary")
}

// GetLeaveTypes returns leave types, served from the metadata cache.
func (c *Client) GetLeaveTypes(ctx context.Context) ([]LeaveType, error) {
	return cached[LeaveType](ctx, c, CacheKeyLeaveTypes, "/leave-types")
}

// cached fetches a list endpoint through the metadata cache. Callers get
// their own copy of the slice.
func cached[T any](ctx context.Context, c *Client, key, path string) ([]T, error) {
	v, err := c.cache.Get(ctx, key, func(ctx context.Context) (any, error) {
		var out []T
		if err := c.do(ctx, "GET", path, nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := v.([]T)
	return append([]T(nil), items...), nil
}
