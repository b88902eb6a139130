package chat

import (
	"context"
	"encoding/json"

	"github.com/eazerepy/eazerepy/client/sdk"
)

// Backend is the part of the backend API a chat session reads and writes.
type Backend interface {
	GetAgent(ctx context.Context, id int) (*sdk.Agent, error)
	ListConversations(ctx context.Context, agentID int) ([]sdk.Conversation, error)
	CreateConversation(ctx context.Context, agentID int) (*sdk.Conversation, error)
	ListMessages(ctx context.Context, agentID, conversationID int) ([]sdk.Message, error)
	CreateMessage(ctx context.Context, agentID, conversationID int, req *sdk.CreateMessageRequest) (*sdk.Message, error)
}

// Turner runs inference over the conversation history and returns the raw JSON response.
type Turner interface {
	SendTurn(ctx context.Context, agentID int, history []sdk.Turn) (json.RawMessage, error)
}

// TurnerFunc adapts a function to Turner.
type TurnerFunc func(ctx context.Context, agentID int, history []sdk.Turn) (json.RawMessage, error)

func (f TurnerFunc) SendTurn(ctx context.Context, agentID int, history []sdk.Turn) (json.RawMessage, error) {
	return f(ctx, agentID, history)
}

// MessageSender is the single-message inference call.
type MessageSender interface {
	SendMessage(ctx context.Context, agentID int, message string) (json.RawMessage, error)
}

// LegacyTurner sends only the newest turn through the single-message endpoint.
type LegacyTurner struct {
	Sender MessageSender
}

func (l LegacyTurner) SendTurn(ctx context.Context, agentID int, history []sdk.Turn) (json.RawMessage, error) {
	last := ""
	if n := len(history); n > 0 {
		last = history[n-1].Content
	}
	return l.Sender.SendMessage(ctx, agentID, last)
}
