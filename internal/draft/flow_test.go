package draft_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/agent"
	"github.com/eazerepy/eazerepy/internal/backendtest"
	"github.com/eazerepy/eazerepy/internal/draft"
)

func stores(t *testing.T) map[string]func() draft.Store {
	return map[string]func() draft.Store{
		"memory": func() draft.Store { return draft.NewMemoryStore() },
		"file":   func() draft.Store { return draft.NewFileStore(filepath.Join(t.TempDir(), "drafts")) },
	}
}

func TestFlow_RequestDefaults(t *testing.T) {
	for name, newStore := range stores(t) {
		newStore := newStore
		t.Run(name, func(t *testing.T) {
			flow := draft.NewFlow(newStore())
			req, err := flow.Request(context.Background())
			require.NoError(t, err)
			assert.Equal(t, draft.DefaultName, req.AgentName)
			assert.Equal(t, []string{}, req.AgentBio)
			assert.Equal(t, []string{}, req.Traits)
			assert.Equal(t, "", req.AgentTwitter)
			assert.Len(t, req.Credentials, len(sdk.CredentialFields()))
			for _, field := range sdk.CredentialFields() {
				value, ok := req.Credentials[field]
				assert.True(t, ok, field)
				assert.Equal(t, "", value, field)
			}
		})
	}
}

func TestFlow_RoundTrip(t *testing.T) {
	for name, newStore := range stores(t) {
		newStore := newStore
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			flow := draft.NewFlow(newStore())
			profile := agent.Profile{Name: "Trader", Bio: []string{"Trades."}, Twitter: "@trader", Traits: []string{"Analytical"}}
			require.NoError(t, flow.Begin(ctx, profile))
			require.NoError(t, flow.Configure(ctx, sdk.Credentials{"openai_api_key": " sk-1 "}))

			loaded, ok, err := flow.Profile(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, profile, loaded)

			req, err := flow.Request(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Trader", req.AgentName)
			assert.Equal(t, []string{"Trades."}, req.AgentBio)
			assert.Equal(t, "@trader", req.AgentTwitter)
			assert.Equal(t, "sk-1", req.Credentials["openai_api_key"])
			assert.Equal(t, "", req.Credentials["evm_private_key"])
		})
	}
}

func TestFlow_Submit(t *testing.T) {
	backend := backendtest.New()
	token := backend.AddUser("alice", "secret")
	srv := backend.Start()
	defer srv.Close()
	client := sdk.New(srv.URL, sdk.WithTokenProvider(func(context.Context) (string, error) { return token, nil }))

	ctx := context.Background()
	store := draft.NewMemoryStore()
	flow := draft.NewFlow(store)
	require.NoError(t, flow.Begin(ctx, agent.Profile{Name: "Trader", Bio: []string{"Trades."}}))

	created, err := flow.Submit(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, "Trader", created.AgentName)
	assert.Equal(t, 1, backend.Calls("POST /aiagents"))

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(backend.Bodies("POST /aiagents")[0], &sent))
	for _, field := range sdk.CredentialFields() {
		assert.Equal(t, "", sent[field], field)
	}

	_, ok, err := store.LoadProfile(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlow_SubmitFailureKeepsDraft(t *testing.T) {
	srv := backendtest.New().Start()
	defer srv.Close()
	client := sdk.New(srv.URL)

	ctx := context.Background()
	store := draft.NewMemoryStore()
	flow := draft.NewFlow(store)
	require.NoError(t, flow.Begin(ctx, agent.Profile{Name: "Trader"}))
	_, err := flow.Submit(ctx, client)
	require.Error(t, err)
	assert.ErrorIs(t, err, draft.ErrCreate)
	assert.Equal(t, http.StatusUnauthorized, sdk.StatusCode(err))

	_, ok, err := store.LoadProfile(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStore_MissingAndMalformed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drafts")
	store := draft.NewFileStore(dir)
	ctx := context.Background()

	_, ok, err := store.LoadProfile(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("{not json"), 0o600))
	creds, ok, err := store.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, creds)

	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(filepath.Join(dir, "credentials.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestParseAssignment(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		field   string
		value   string
		wantErr bool
	}{
		{name: "env style", input: "OPENAI_API_KEY=sk-1", field: "openai_api_key", value: "sk-1"},
		{name: "field style", input: "evm_private_key= 0xabc ", field: "evm_private_key", value: "0xabc"},
		{name: "value with equals", input: "GOAT_RPC_PROVIDER_URL=https://rpc?a=b", field: "goat_rpc_provider_url", value: "https://rpc?a=b"},
		{name: "empty value", input: "GROQ_API_KEY=", field: "groq_api_key", value: ""},
		{name: "unknown", input: "FOO=bar", wantErr: true},
		{name: "no equals", input: "OPENAI_API_KEY", wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			field, value, err := draft.ParseAssignment(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.field, field)
			assert.Equal(t, tc.value, value)
		})
	}
}
