package sdk

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	return c.token(ctx, c.paths.Login, username, password)
}

// Register creates an account and returns its bearer token.
func (c *Client) Register(ctx context.Context, username, password string) (*TokenResponse, error) {
	return c.token(ctx, c.paths.Register, username, password)
}

// Me returns the user behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, c.paths.Probe, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) token(ctx context.Context, uri, username, password string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, uri, &LoginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
