package sdk

import (
	"encoding/json"
)

// Role values used by conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Credentials holds the flat credential fields of an agent keyed by JSON field name
// (for example "evm_private_key").
type Credentials map[string]string

// Get returns the value of a credential field or "" when absent.
func (c Credentials) Get(field string) string {
	if c == nil {
		return ""
	}
	return c[field]
}

// Clone returns a copy of c.
func (c Credentials) Clone() Credentials {
	out := make(Credentials, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Agent mirrors GET /aiagents/{id}. Credential fields travel flattened in the same object.
type Agent struct {
	ID           int         `json:"id"`
	UserID       int         `json:"user_id,omitempty"`
	AgentName    string      `json:"agent_name"`
	AgentBio     []string    `json:"agent_bio"`
	AgentTwitter string      `json:"agent_twitter"`
	Traits       []string    `json:"traits"`
	CreatedAt    *Timestamp  `json:"created_at,omitempty"`
	Credentials  Credentials `json:"-"`
}

type agentFields Agent

// MarshalJSON flattens Credentials into the agent object.
func (a Agent) MarshalJSON() ([]byte, error) {
	return flatten(agentFields(a), a.Credentials)
}

// UnmarshalJSON picks known credential fields out of the flat agent object.
func (a *Agent) UnmarshalJSON(data []byte) error {
	var fields agentFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	creds, err := extractCredentials(data)
	if err != nil {
		return err
	}
	*a = Agent(fields)
	a.Credentials = creds
	return nil
}

// CreateAgentRequest mirrors POST /aiagents. Every credential field is sent, blank ones as "".
type CreateAgentRequest struct {
	AgentName    string      `json:"agent_name"`
	AgentBio     []string    `json:"agent_bio"`
	AgentTwitter string      `json:"agent_twitter"`
	Traits       []string    `json:"traits"`
	Credentials  Credentials `json:"-"`
}

type createFields CreateAgentRequest

// MarshalJSON flattens Credentials into the request object.
func (r CreateAgentRequest) MarshalJSON() ([]byte, error) {
	return flatten(createFields(r), r.Credentials)
}

// UpdateAgentRequest mirrors PUT /aiagents/{id}; nil fields are omitted.
// Traits is a pointer so an emptied trait list can still be sent.
type UpdateAgentRequest struct {
	AgentName    *string     `json:"agent_name,omitempty"`
	AgentBio     []string    `json:"agent_bio,omitempty"`
	AgentTwitter *string     `json:"agent_twitter,omitempty"`
	Traits       *[]string   `json:"traits,omitempty"`
	Credentials  Credentials `json:"-"`
}

type updateFields UpdateAgentRequest

// MarshalJSON flattens Credentials into the request object.
func (r UpdateAgentRequest) MarshalJSON() ([]byte, error) {
	return flatten(updateFields(r), r.Credentials)
}

// Conversation mirrors conversation list items.
type Conversation struct {
	ID        int        `json:"id"`
	AgentID   int        `json:"aiagent_id,omitempty"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// Message mirrors conversation messages.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int       `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      Timestamp `json:"created_at"`
}

// CreateMessageRequest mirrors POST /aiagents/{id}/conversations/{cid}/messages.
type CreateMessageRequest struct {
	ConversationID int    `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
}

// Turn is one entry of the history sent to the inference endpoint.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest mirrors POST /zerepy/v2.
type TurnRequest struct {
	AgentID  int    `json:"agent_id"`
	Messages []Turn `json:"messages"`
}

// LegacyMessageRequest mirrors POST /zerepy.
type LegacyMessageRequest struct {
	AgentID int    `json:"agent_id"`
	Message string `json:"message"`
}

// LoginRequest carries the credentials for login and register.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// User is returned by the session probe endpoint.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

func flatten(fields interface{}, creds Credentials) ([]byte, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return data, nil
	}
	var merged map[string]interface{}
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range creds {
		if _, taken := merged[k]; taken {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

func extractCredentials(data []byte) (Credentials, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	creds := Credentials{}
	for _, field := range CredentialFields() {
		if v, ok := raw[field].(string); ok && v != "" {
			creds[field] = v
		}
	}
	return creds, nil
}
