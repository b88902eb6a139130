package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// ListAgents lists agents owned by the current session.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var resp []Agent
	if err := c.doJSON(ctx, http.MethodGet, "/aiagents", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetAgent fetches one agent.
func (c *Client) GetAgent(ctx context.Context, id int) (*Agent, error) {
	var resp Agent
	if err := c.doJSON(ctx, http.MethodGet, agentURI(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateAgent creates an agent from a flat request.
func (c *Client) CreateAgent(ctx context.Context, req *CreateAgentRequest) (*Agent, error) {
	if req == nil {
		return nil, fmt.Errorf("create request is required")
	}
	var resp Agent
	if err := c.doJSON(ctx, http.MethodPost, "/aiagents", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateAgent applies a partial update.
func (c *Client) UpdateAgent(ctx context.Context, id int, req *UpdateAgentRequest) (*Agent, error) {
	if req == nil {
		return nil, fmt.Errorf("update request is required")
	}
	var resp Agent
	if err := c.doJSON(ctx, http.MethodPut, agentURI(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteAgent deletes an agent.
func (c *Client) DeleteAgent(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, agentURI(id), nil, nil)
}

func agentURI(id int) string {
	return fmt.Sprintf("/aiagents/%d", id)
}
