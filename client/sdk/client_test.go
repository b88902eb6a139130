package sdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/backendtest"
)

func staticToken(tok string) sdk.TokenProvider {
	return func(context.Context) (string, error) { return tok, nil }
}

func TestClient_AuthorizationHeader(t *testing.T) {
	cases := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "token attached", token: "abc", expected: "Bearer abc"},
		{name: "blank token omitted", token: "  ", expected: ""},
		{name: "no token omitted", token: "", expected: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				require.Equal(t, "/aiagents", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte("[]"))
			}))
			defer srv.Close()

			client := sdk.New(srv.URL, sdk.WithTokenProvider(staticToken(tc.token)))
			agents, err := client.ListAgents(context.Background())
			require.NoError(t, err)
			assert.Empty(t, agents)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClient_BasePathPrefix(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := sdk.New(srv.URL + "/api/")
	_, err := client.ListAgents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/aiagents", path)
}

func TestClient_RequestID(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get(sdk.RequestIDHeader))
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := sdk.New(srv.URL, sdk.WithRequestID())
	for i := 0; i < 2; i++ {
		_, err := client.ListAgents(context.Background())
		require.NoError(t, err)
	}
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestClient_Unauthorized(t *testing.T) {
	backend := backendtest.New()
	token := backend.AddUser("alice", "secret")
	backend.Revoke()
	srv := backend.Start()
	defer srv.Close()

	handled := 0
	client := sdk.New(srv.URL,
		sdk.WithTokenProvider(staticToken(token)),
		sdk.WithUnauthorizedHandler(func() { handled++ }),
	)
	_, err := client.GetAgent(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, sdk.IsUnauthorized(err))
	assert.Equal(t, 1, handled)

	var herr *sdk.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Contains(t, herr.Body, "not authenticated")
}

func TestClient_NotFound(t *testing.T) {
	backend := backendtest.New()
	token := backend.AddUser("alice", "secret")
	backend.AddUser("bob", "secret")
	id := backend.AddAgent("bob", sdk.Agent{AgentName: "Bob's"})
	srv := backend.Start()
	defer srv.Close()

	handled := 0
	client := sdk.New(srv.URL,
		sdk.WithTokenProvider(staticToken(token)),
		sdk.WithUnauthorizedHandler(func() { handled++ }),
	)
	_, err := client.GetAgent(context.Background(), id)
	require.Error(t, err)
	assert.True(t, sdk.IsNotFound(err))
	assert.False(t, sdk.IsUnauthorized(err))
	assert.Equal(t, 0, handled)
}

func TestClient_CreateAgentSendsFlatObject(t *testing.T) {
	backend := backendtest.New()
	token := backend.AddUser("alice", "secret")
	srv := backend.Start()
	defer srv.Close()

	creds := sdk.Credentials{}
	for _, field := range sdk.CredentialFields() {
		creds[field] = ""
	}
	creds["evm_private_key"] = "0xabc"

	client := sdk.New(srv.URL, sdk.WithTokenProvider(staticToken(token)))
	created, err := client.CreateAgent(context.Background(), &sdk.CreateAgentRequest{
		AgentName:   "Trader",
		AgentBio:    []string{"Trades things."},
		Traits:      []string{"Analytical"},
		Credentials: creds,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "0xabc", created.Credentials.Get("evm_private_key"))

	bodies := backend.Bodies("POST /aiagents")
	require.Len(t, bodies, 1)
	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(bodies[0], &sent))
	for _, field := range sdk.CredentialFields() {
		value, ok := sent[field]
		assert.True(t, ok, field)
		assert.IsType(t, "", value, field)
	}
	assert.Equal(t, "Trader", sent["agent_name"])
	assert.Equal(t, "", sent["agent_twitter"])
}

func TestClient_SendTurn(t *testing.T) {
	backend := backendtest.New()
	token := backend.AddUser("alice", "secret")
	srv := backend.Start()
	defer srv.Close()

	client := sdk.New(srv.URL, sdk.WithTokenProvider(staticToken(token)))
	history := []sdk.Turn{
		{Role: sdk.RoleUser, Content: "hi"},
		{Role: sdk.RoleAssistant, Content: "hello"},
		{Role: sdk.RoleUser, Content: "swap 1 ETH"},
	}
	raw, err := client.SendTurn(context.Background(), 7, history)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"reply","result":"echo: swap 1 ETH"}`, string(raw))

	bodies := backend.Bodies("POST /zerepy/v2")
	require.Len(t, bodies, 1)
	var sent sdk.TurnRequest
	require.NoError(t, json.Unmarshal(bodies[0], &sent))
	assert.Equal(t, 7, sent.AgentID)
	assert.Equal(t, history, sent.Messages)

	raw, err = client.SendMessage(context.Background(), 7, "legacy")
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"reply","result":"echo: legacy"}`, string(raw))
}

func TestClient_LoginAndProbe(t *testing.T) {
	backend := backendtest.New()
	backend.AddUser("alice", "secret")
	srv := backend.Start()
	defer srv.Close()

	client := sdk.New(srv.URL)
	_, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, sdk.IsUnauthorized(err))

	tok, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)

	authed := sdk.New(srv.URL, sdk.WithTokenProvider(staticToken(tok.AccessToken)))
	me, err := authed.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}
