package api

import "context"

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, "POST", "/auth/login", LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthStatus reports whether the current token is accepted.
func (c *Client) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	var out AuthStatus
	if err := c.do(ctx, "GET", "/auth/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the server-side session and drops cached metadata.
func (c *Client) Logout(ctx context.Context) error {
	c.cache.Clear()
	return c.do(ctx, "POST", "/auth/logout", nil, nil)
}
