// Package chat implements the conversation session between a user and one agent.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eazerepy/eazerepy/client/sdk"
	"go.uber.org/zap"
)

// Session holds the transcript of one agent chat. The transcript is kept in array order and
// never re-sorted. One turn may be in flight at a time.
type Session struct {
	backend  Backend
	turner   Turner
	selector Selector
	logger   *zap.Logger
	now      func() time.Time
	agentID  int

	mu           sync.RWMutex
	agent        *sdk.Agent
	conversation *sdk.Conversation
	transcript   []sdk.Message
	sending      bool
	err          error
	lastLocalID  int64
}

// Pending is a turn accepted by Begin and not yet delivered.
type Pending struct {
	Message        sdk.Message
	History        []sdk.Turn
	conversationID int
}

// Option customizes a Session.
type Option func(s *Session)

// WithTurner sets the inference capability; the backend is used when it implements Turner.
func WithTurner(turner Turner) Option {
	return func(s *Session) { s.turner = turner }
}

// WithSelector sets the conversation selector.
func WithSelector(selector Selector) Option {
	return func(s *Session) {
		if selector != nil {
			s.selector = selector
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for local message timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session for agentID. Call Open before sending.
func New(backend Backend, agentID int, opts ...Option) *Session {
	s := &Session{
		backend:  backend,
		selector: First,
		logger:   zap.NewNop(),
		now:      time.Now,
		agentID:  agentID,
	}
	if t, ok := backend.(Turner); ok {
		s.turner = t
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open resolves the agent and its conversation. Agent failures are terminal and returned;
// conversation failures are recorded in Err and leave the session unable to send.
func (s *Session) Open(ctx context.Context) error {
	agent, err := s.backend.GetAgent(ctx, s.agentID)
	if err != nil {
		if sdk.IsNotFound(err) || sdk.IsForbidden(err) {
			return s.fail(fmt.Errorf("%w: %v", ErrAgentNotFound, err))
		}
		s.logger.Error("failed to load agent", zap.Int("agentId", s.agentID), zap.Error(err))
		return s.fail(fmt.Errorf("%w: %v", ErrAgentLoad, err))
	}
	s.mu.Lock()
	s.agent = agent
	s.mu.Unlock()

	conversation, messages, err := s.resolveConversation(ctx)
	if err != nil {
		s.logger.Error("failed to resolve conversation", zap.Int("agentId", s.agentID), zap.Error(err))
		s.fail(fmt.Errorf("%w: %v", ErrConversationLoad, err))
		return nil
	}
	s.mu.Lock()
	s.conversation = conversation
	s.transcript = messages
	s.err = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) resolveConversation(ctx context.Context) (*sdk.Conversation, []sdk.Message, error) {
	conversations, err := s.backend.ListConversations(ctx, s.agentID)
	if err != nil {
		return nil, nil, err
	}
	if len(conversations) == 0 {
		created, err := s.backend.CreateConversation(ctx, s.agentID)
		if err != nil {
			return nil, nil, err
		}
		return created, []sdk.Message{}, nil
	}
	selected := s.selector(conversations)
	messages, err := s.backend.ListMessages(ctx, s.agentID, selected.ID)
	if err != nil {
		return nil, nil, err
	}
	if messages == nil {
		messages = []sdk.Message{}
	}
	return &selected, messages, nil
}

// Begin appends input to the transcript as an optimistic user message and marks a send in
// flight. It returns false without changes when input is blank, a send is in flight or no
// conversation is resolved.
func (s *Session) Begin(input string) (*Pending, bool) {
	if strings.TrimSpace(input) == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending || s.conversation == nil {
		return nil, false
	}
	msg := sdk.Message{
		ID:             s.nextLocalID(),
		ConversationID: s.conversation.ID,
		Role:           sdk.RoleUser,
		Content:        input,
		CreatedAt:      sdk.Timestamp{Time: s.now()},
	}
	s.transcript = append(s.transcript, msg)
	s.sending = true
	return &Pending{Message: msg, History: turns(s.transcript), conversationID: s.conversation.ID}, true
}

// Deliver persists the user message, runs inference over the history, persists the response
// as an assistant message and appends it. The in-flight flag is cleared on every path; on
// failure the optimistic user message stays in the transcript.
func (s *Session) Deliver(ctx context.Context, p *Pending) error {
	err := s.deliver(ctx, p)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false
	if err != nil {
		s.logger.Error("failed to send message", zap.Int("agentId", s.agentID), zap.Error(err))
		s.err = fmt.Errorf("%w: %v", ErrSend, err)
		return s.err
	}
	if errors.Is(s.err, ErrSend) {
		s.err = nil
	}
	return nil
}

func (s *Session) deliver(ctx context.Context, p *Pending) error {
	if p == nil {
		return fmt.Errorf("no pending turn")
	}
	if _, err := s.backend.CreateMessage(ctx, s.agentID, p.conversationID, &sdk.CreateMessageRequest{
		ConversationID: p.conversationID,
		Role:           p.Message.Role,
		Content:        p.Message.Content,
	}); err != nil {
		return fmt.Errorf("persist user message: %w", err)
	}
	if s.turner == nil {
		return fmt.Errorf("inference not configured")
	}
	raw, err := s.turner.SendTurn(ctx, s.agentID, p.History)
	if err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	content := string(raw)
	if _, err := s.backend.CreateMessage(ctx, s.agentID, p.conversationID, &sdk.CreateMessageRequest{
		ConversationID: p.conversationID,
		Role:           sdk.RoleAssistant,
		Content:        content,
	}); err != nil {
		return fmt.Errorf("persist assistant message: %w", err)
	}
	s.mu.Lock()
	s.transcript = append(s.transcript, sdk.Message{
		ID:             s.nextLocalID(),
		ConversationID: p.conversationID,
		Role:           sdk.RoleAssistant,
		Content:        content,
		CreatedAt:      sdk.Timestamp{Time: s.now()},
	})
	s.mu.Unlock()
	return nil
}

// Send runs Begin and Deliver. It reports false when the input was not accepted.
func (s *Session) Send(ctx context.Context, input string) (bool, error) {
	p, ok := s.Begin(input)
	if !ok {
		return false, nil
	}
	return true, s.Deliver(ctx, p)
}

// Transcript returns a copy of the transcript in array order.
func (s *Session) Transcript() []sdk.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]sdk.Message(nil), s.transcript...)
}

// Sending reports whether a turn is in flight.
func (s *Session) Sending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sending
}

// Err returns the last recorded error.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Agent returns the resolved agent, or nil before Open succeeds.
func (s *Session) Agent() *sdk.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agent
}

// Conversation returns the resolved conversation, or nil.
func (s *Session) Conversation() *sdk.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversation
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return err
}

// nextLocalID derives ids from the clock in milliseconds, kept strictly increasing.
// Callers hold mu.
func (s *Session) nextLocalID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastLocalID {
		id = s.lastLocalID + 1
	}
	s.lastLocalID = id
	return id
}

func turns(messages []sdk.Message) []sdk.Turn {
	out := make([]sdk.Turn, 0, len(messages))
	for _, m := range messages {
		out = append(out, sdk.Turn{Role: m.Role, Content: m.Content})
	}
	return out
}
