package chat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/backendtest"
	"github.com/eazerepy/eazerepy/internal/chat"
)

type fixture struct {
	backend *backendtest.Backend
	client  *sdk.Client
	agentID int
	close   func()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := backendtest.New()
	token := backend.AddUser("alice", "secret")
	id := backend.AddAgent("alice", sdk.Agent{AgentName: "Trader", Traits: []string{"Analytical"}})
	srv := backend.Start()
	client := sdk.New(srv.URL, sdk.WithTokenProvider(func(context.Context) (string, error) { return token, nil }))
	return &fixture{backend: backend, client: client, agentID: id, close: srv.Close}
}

func TestSession_OpenCreatesConversation(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	session := chat.New(f.client, f.agentID)
	require.NoError(t, session.Open(context.Background()))
	assert.Equal(t, 1, f.backend.Calls("POST /aiagents/{id}/conversations"))
	assert.Empty(t, session.Transcript())
	require.NotNil(t, session.Conversation())
	assert.Equal(t, "Trader", session.Agent().AgentName)
	assert.NoError(t, session.Err())
}

func TestSession_OpenLoadsExisting(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	cid := f.backend.AddConversation(f.agentID,
		sdk.Message{Role: sdk.RoleUser, Content: "first"},
		sdk.Message{Role: sdk.RoleAssistant, Content: `{"action":"reply","result":"second"}`},
		sdk.Message{Role: sdk.RoleUser, Content: "third"},
	)

	session := chat.New(f.client, f.agentID)
	require.NoError(t, session.Open(context.Background()))
	assert.Equal(t, 0, f.backend.Calls("POST /aiagents/{id}/conversations"))
	assert.Equal(t, cid, session.Conversation().ID)
	transcript := session.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, "first", transcript[0].Content)
	assert.Equal(t, "third", transcript[2].Content)
}

func TestSession_OpenSelector(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	first := f.backend.AddConversation(f.agentID, sdk.Message{Role: sdk.RoleUser, Content: "old"})
	latest := f.backend.AddConversation(f.agentID, sdk.Message{Role: sdk.RoleUser, Content: "new"})

	cases := []struct {
		name     string
		selector chat.Selector
		expected int
	}{
		{name: "first", selector: chat.First, expected: first},
		{name: "latest", selector: chat.Latest, expected: latest},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			session := chat.New(f.client, f.agentID, chat.WithSelector(tc.selector))
			require.NoError(t, session.Open(context.Background()))
			assert.Equal(t, tc.expected, session.Conversation().ID)
		})
	}
}

func TestSession_OpenErrors(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	foreign := f.backend.AddAgent("bob", sdk.Agent{AgentName: "Foreign"})

	session := chat.New(f.client, foreign)
	err := session.Open(context.Background())
	assert.ErrorIs(t, err, chat.ErrAgentNotFound)
	assert.Equal(t, "Agent not found or you don't have permission to access it.", chat.Message(err))

	f.backend.FailConversations = http.StatusInternalServerError
	degraded := chat.New(f.client, f.agentID)
	require.NoError(t, degraded.Open(context.Background()))
	assert.ErrorIs(t, degraded.Err(), chat.ErrConversationLoad)
	assert.NotNil(t, degraded.Agent())
	_, ok := degraded.Begin("hello")
	assert.False(t, ok)
}

func TestSession_OpenServerError(t *testing.T) {
	srv := backendtest.New().Start()
	srv.Close()
	session := chat.New(sdk.New(srv.URL), 1)
	err := session.Open(context.Background())
	assert.ErrorIs(t, err, chat.ErrAgentLoad)
	assert.Equal(t, "Failed to load agent details. Please try again later.", chat.Message(err))
}

func TestSession_BlankInput(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	session := chat.New(f.client, f.agentID)
	require.NoError(t, session.Open(context.Background()))

	before := f.backend.TotalCalls()
	for _, input := range []string{"", "   ", "\t\n"} {
		sent, err := session.Send(context.Background(), input)
		require.NoError(t, err)
		assert.False(t, sent)
	}
	assert.Empty(t, session.Transcript())
	assert.False(t, session.Sending())
	assert.Equal(t, before, f.backend.TotalCalls())
}

func TestSession_Send(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	session := chat.New(f.client, f.agentID)
	require.NoError(t, session.Open(context.Background()))
	cid := session.Conversation().ID

	sent, err := session.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.True(t, sent)
	sent, err = session.Send(context.Background(), "swap 1 ETH")
	require.NoError(t, err)
	assert.True(t, sent)

	transcript := session.Transcript()
	require.Len(t, transcript, 4)
	roles := []string{transcript[0].Role, transcript[1].Role, transcript[2].Role, transcript[3].Role}
	assert.Equal(t, []string{sdk.RoleUser, sdk.RoleAssistant, sdk.RoleUser, sdk.RoleAssistant}, roles)
	assert.JSONEq(t, `{"action":"reply","result":"echo: swap 1 ETH"}`, transcript[3].Content)
	for i := 1; i < len(transcript); i++ {
		assert.Greater(t, transcript[i].ID, transcript[i-1].ID)
	}

	stored := f.backend.Messages(cid)
	require.Len(t, stored, 4)
	assert.Equal(t, transcript[3].Content, stored[3].Content)

	bodies := f.backend.Bodies("POST /zerepy/v2")
	require.Len(t, bodies, 2)
	var req sdk.TurnRequest
	require.NoError(t, json.Unmarshal(bodies[1], &req))
	assert.Equal(t, f.agentID, req.AgentID)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, sdk.Turn{Role: sdk.RoleUser, Content: "swap 1 ETH"}, req.Messages[2])
}

func TestSession_OptimisticAppend(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	release := make(chan struct{})
	f.backend.Inference = func(req sdk.TurnRequest) (interface{}, int) {
		<-release
		return nil, http.StatusBadGateway
	}
	session := chat.New(f.client, f.agentID)
	require.NoError(t, session.Open(context.Background()))

	pending, ok := session.Begin("buy the dip")
	require.True(t, ok)
	assert.True(t, session.Sending())
	_, again := session.Begin("second")
	assert.False(t, again)

	done := make(chan error, 1)
	go func() { done <- session.Deliver(context.Background(), pending) }()

	transcript := session.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, "buy the dip", transcript[0].Content)
	assert.Equal(t, sdk.RoleUser, transcript[0].Role)

	close(release)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, chat.ErrSend)
	case <-time.After(5 * time.Second):
		t.Fatal("deliver did not return")
	}
	assert.False(t, session.Sending())
	assert.ErrorIs(t, session.Err(), chat.ErrSend)
	assert.Equal(t, "Failed to send message. Please try again later.", chat.Message(session.Err()))
	transcript = session.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, "buy the dip", transcript[0].Content)
}

func TestSession_PersistFailure(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	session := chat.New(f.client, f.agentID)
	require.NoError(t, session.Open(context.Background()))
	f.backend.FailMessages = http.StatusInternalServerError

	sent, err := session.Send(context.Background(), "hello")
	assert.True(t, sent)
	assert.ErrorIs(t, err, chat.ErrSend)
	assert.Equal(t, 0, f.backend.Calls("POST /zerepy/v2"))
	assert.Len(t, session.Transcript(), 1)
	assert.False(t, session.Sending())

	f.backend.FailMessages = 0
	_, err = session.Send(context.Background(), "hello again")
	require.NoError(t, err)
	assert.NoError(t, session.Err())
	assert.Len(t, session.Transcript(), 3)
}

func TestSession_LegacyTurner(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	session := chat.New(f.client, f.agentID, chat.WithTurner(chat.LegacyTurner{Sender: f.client}))
	require.NoError(t, session.Open(context.Background()))

	_, err := session.Send(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.Calls("POST /zerepy"))
	assert.Equal(t, 0, f.backend.Calls("POST /zerepy/v2"))
	transcript := session.Transcript()
	require.Len(t, transcript, 2)
	assert.JSONEq(t, `{"action":"reply","result":"echo: legacy"}`, transcript[1].Content)
}

func TestSession_ClockIDs(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	session := chat.New(f.client, f.agentID, chat.WithClock(func() time.Time { return fixed }))
	require.NoError(t, session.Open(context.Background()))
	_, err := session.Send(context.Background(), "hi")
	require.NoError(t, err)

	transcript := session.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, fixed.UnixMilli(), transcript[0].ID)
	assert.Equal(t, fixed.UnixMilli()+1, transcript[1].ID)
	assert.True(t, transcript[0].CreatedAt.Equal(fixed))
}
