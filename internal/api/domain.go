package api

import (
	"context"
	"fmt"

	"github.com/zenem/zenem/internal/calendar"
)

// ListProjects returns a page of projects.
func (c *Client) ListProjects(ctx context.Context, q PageQuery) (*Page[Project], error) {
	return list[Project](ctx, c, q.encode("/projects"))
}

// ListTeams returns a page of teams.
func (c *Client) ListTeams(ctx context.Context, q PageQuery) (*Page[Team], error) {
	return list[Team](ctx, c, q.encode("/teams"))
}

// ListSprints returns a page of sprints.
func (c *Client) ListSprints(ctx context.Context, q PageQuery) (*Page[Sprint], error) {
	return list[Sprint](ctx, c, q.encode("/sprints"))
}

// ListReleases returns a page of releases.
func (c *Client) ListReleases(ctx context.Context, q PageQuery) (*Page[Release], error) {
	return list[Release](ctx, c, q.encode("/releases"))
}

// ListTeammates returns a page of teammates with role fields normalized
// against the cached role metadata. If roles cannot be loaded the teammates
// are still returned with their raw role values upper-snaked.
func (c *Client) ListTeammates(ctx context.Context, q PageQuery) (*Page[Teammate], error) {
	page, err := list[Teammate](ctx, c, q.encode("/teammates"))
	if err != nil {
		return nil, err
	}

	primary, err := c.GetPrimaryRoles(ctx)
	if err != nil {
		c.log.Warningf("load primary roles: %v", err)
	}
	secondary, err := c.GetSecondaryRoles(ctx)
	if err != nil {
		c.log.Warningf("load secondary roles: %v", err)
	}

	for i := range page.Content {
		page.Content[i] = NormalizeTeammate(page.Content[i], primary, secondary)
	}
	return page, nil
}

// GetCalendarMonth returns the events overlapping a month.
func (c *Client) GetCalendarMonth(ctx context.Context, year, month int) ([]calendar.Event, error) {
	var out []calendar.Event
	if err := c.do(ctx, "GET", fmt.Sprintf("/calendar/%d/%d", year, month), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func list[T any](ctx context.Context, c *Client, path string) (*Page[T], error) {
	var out Page[T]
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	if out.Content == nil {
		out.Content = []T{}
	}
	return &out, nil
}
