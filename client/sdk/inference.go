package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// SendTurn posts the full ordered history to the inference endpoint and returns its raw JSON response.
func (c *Client) SendTurn(ctx context.Context, agentID int, history []Turn) (json.RawMessage, error) {
	if history == nil {
		history = []Turn{}
	}
	var resp json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/zerepy/v2", &TurnRequest{AgentID: agentID, Messages: history}, &resp); err != nil {
		return nil, err
	}
	return compact(resp), nil
}

// SendMessage posts a single message to the legacy inference endpoint.
func (c *Client) SendMessage(ctx context.Context, agentID int, message string) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/zerepy", &LegacyMessageRequest{AgentID: agentID, Message: message}, &resp); err != nil {
		return nil, err
	}
	return compact(resp), nil
}

func compact(raw json.RawMessage) json.RawMessage {
	buf := &bytes.Buffer{}
	if err := json.Compact(buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
