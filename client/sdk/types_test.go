package sdk

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgent_UnmarshalJSON(t *testing.T) {
	payload := `{
		"id": 3,
		"user_id": 9,
		"agent_name": "Trader",
		"agent_bio": ["One.", "Two."],
		"agent_twitter": "@trader",
		"traits": ["Analytical"],
		"evm_private_key": "0xabc",
		"discord_token": "",
		"unknown_field": "ignored",
		"created_at": "2025-03-01T10:20:30.123456"
	}`
	var agent Agent
	require.NoError(t, json.Unmarshal([]byte(payload), &agent))
	assert.Equal(t, 3, agent.ID)
	assert.Equal(t, 9, agent.UserID)
	assert.Equal(t, []string{"One.", "Two."}, agent.AgentBio)
	assert.Equal(t, Credentials{"evm_private_key": "0xabc"}, agent.Credentials)
	require.NotNil(t, agent.CreatedAt)
	assert.Equal(t, 2025, agent.CreatedAt.Year())
	assert.Equal(t, time.March, agent.CreatedAt.Month())
}

func TestUpdateAgentRequest_MarshalJSON(t *testing.T) {
	name := "Renamed"
	data, err := json.Marshal(UpdateAgentRequest{
		AgentName:   &name,
		AgentBio:    []string{"Bio."},
		Credentials: Credentials{"openai_api_key": "sk-1", "agent_name": "shadowed"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"agent_name":"Renamed","agent_bio":["Bio."],"openai_api_key":"sk-1"}`, string(data))
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
		zero    bool
	}{
		{name: "rfc3339", input: `"2025-03-01T10:20:30Z"`},
		{name: "zone-less", input: `"2025-03-01T10:20:30"`},
		{name: "space separated", input: `"2025-03-01 10:20:30.5"`},
		{name: "null", input: `null`, zero: true},
		{name: "garbage", input: `"yesterday"`, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tc.input), &ts)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.zero, ts.IsZero())
		})
	}
}

func TestLookupCredential(t *testing.T) {
	key, ok := LookupCredential("EternalAI_API_KEY")
	require.True(t, ok)
	assert.Equal(t, "eternalai_api_key", key.Field)

	key, ok = LookupCredential("ETERNALAI_API_KEY")
	require.True(t, ok)
	assert.Equal(t, "eternalai_api_key", key.Field)

	key, ok = LookupCredential("evm_private_key")
	require.True(t, ok)
	assert.Equal(t, GroupBlockchain, key.Group)

	_, ok = LookupCredential("NOPE")
	assert.False(t, ok)
	assert.Len(t, CredentialFields(), 25)
}
