package sdk

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListConversations lists conversations of an agent in server order.
func (c *Client) ListConversations(ctx context.Context, agentID int) ([]Conversation, error) {
	var resp []Conversation
	if err := c.doJSON(ctx, http.MethodGet, conversationsURI(agentID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateConversation creates a new conversation for an agent.
func (c *Client) CreateConversation(ctx context.Context, agentID int) (*Conversation, error) {
	var resp Conversation
	if err := c.doJSON(ctx, http.MethodPost, conversationsURI(agentID), map[string]int{"aiagent_id": agentID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMessages fetches the messages of a conversation in server order.
func (c *Client) ListMessages(ctx context.Context, agentID, conversationID int) ([]Message, error) {
	var resp []Message
	if err := c.doJSON(ctx, http.MethodGet, messagesURI(agentID, conversationID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateMessage persists a message.
func (c *Client) CreateMessage(ctx context.Context, agentID, conversationID int, req *CreateMessageRequest) (*Message, error) {
	if req == nil || strings.TrimSpace(req.Role) == "" {
		return nil, fmt.Errorf("message role is required")
	}
	var resp Message
	if err := c.doJSON(ctx, http.MethodPost, messagesURI(agentID, conversationID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func conversationsURI(agentID int) string {
	return fmt.Sprintf("/aiagents/%d/conversations", agentID)
}

func messagesURI(agentID, conversationID int) string {
	return fmt.Sprintf("/aiagents/%d/conversations/%d/messages", agentID, conversationID)
}
