// Package backendtest provides an in-memory implementation of the agent backend REST API
// for package tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/go-chi/chi/v5"
)

// InferenceFunc computes the inference response for a history; a non-zero status fails the call.
type InferenceFunc func(req sdk.TurnRequest) (interface{}, int)

type agentRecord struct {
	agent sdk.Agent
	owner string
}

// Backend is a fake backend. Its zero value is not usable; call New.
type Backend struct {
	mu            sync.Mutex
	users         map[string]string // username -> password
	tokens        map[string]string // token -> username
	agents        map[int]*agentRecord
	conversations map[int][]sdk.Conversation // agent id -> conversations
	messages      map[int][]sdk.Message      // conversation id -> messages
	nextID        int
	calls         map[string]int
	requests      []*http.Request
	bodies        map[string][]json.RawMessage

	// Inference overrides the default echo behaviour of the inference endpoints.
	Inference InferenceFunc
	// FailMessages makes message creation fail with the given status when non-zero.
	FailMessages int
	// FailConversations makes conversation listing fail with the given status when non-zero.
	FailConversations int
	// FailDelete makes agent deletion fail with the given status when non-zero.
	FailDelete int
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		users:         map[string]string{},
		tokens:        map[string]string{},
		agents:        map[int]*agentRecord{},
		conversations: map[int][]sdk.Conversation{},
		messages:      map[int][]sdk.Message{},
		calls:         map[string]int{},
		bodies:        map[string][]json.RawMessage{},
	}
}

// Start serves the backend on an httptest server; the caller closes it.
func (b *Backend) Start() *httptest.Server {
	return httptest.NewServer(b.Router())
}

// Router builds the chi router of the backend.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Post("/auth/register", b.register)
	r.Post("/auth/login", b.login)
	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)
		r.Get("/auth/me", b.me)
		r.Get("/aiagents", b.listAgents)
		r.Post("/aiagents", b.createAgent)
		r.Get("/aiagents/{id}", b.getAgent)
		r.Put("/aiagents/{id}", b.updateAgent)
		r.Delete("/aiagents/{id}", b.deleteAgent)
		r.Get("/aiagents/{id}/conversations", b.listConversations)
		r.Post("/aiagents/{id}/conversations", b.createConversation)
		r.Get("/aiagents/{id}/conversations/{cid}/messages", b.listMessages)
		r.Post("/aiagents/{id}/conversations/{cid}/messages", b.createMessage)
		r.Post("/zerepy/v2", b.inferenceV2)
		r.Post("/zerepy", b.inferenceLegacy)
	})
	return r
}

// AddUser registers a user and returns a valid token for it.
func (b *Backend) AddUser(username, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = password
	return b.issue(username)
}

// Revoke invalidates every issued token.
func (b *Backend) Revoke() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]string{}
}

// AddAgent stores an agent owned by username and returns its id.
func (b *Backend) AddAgent(username string, agent sdk.Agent) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	agent.ID = b.nextID
	b.agents[agent.ID] = &agentRecord{agent: agent, owner: username}
	return agent.ID
}

// Agent returns a stored agent.
func (b *Backend) Agent(id int) (sdk.Agent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.agents[id]
	if !ok {
		return sdk.Agent{}, false
	}
	return rec.agent, true
}

// AddConversation stores a conversation with messages for an agent and returns its id.
func (b *Backend) AddConversation(agentID int, messages ...sdk.Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addConversation(agentID, messages...)
}

// Messages returns the stored messages of a conversation.
func (b *Backend) Messages(conversationID int) []sdk.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sdk.Message(nil), b.messages[conversationID]...)
}

// Conversations returns the stored conversations of an agent.
func (b *Backend) Conversations(agentID int) []sdk.Conversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sdk.Conversation(nil), b.conversations[agentID]...)
}

// Calls returns how many requests matched "METHOD /route/pattern".
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// TotalCalls returns the number of requests served.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// Requests returns the served requests in arrival order.
func (b *Backend) Requests() []*http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*http.Request(nil), b.requests...)
}

// Bodies returns the decoded JSON bodies received for "METHOD /route/pattern".
func (b *Backend) Bodies(route string) []json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]json.RawMessage(nil), b.bodies[route]...)
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		route := r.Method + " " + chi.RouteContext(r.Context()).RoutePattern()
		b.mu.Lock()
		b.calls[route]++
		b.requests = append(b.requests, r)
		b.mu.Unlock()
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		user, ok := b.tokens[token]
		b.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req sdk.LoginRequest
	if !b.decode(w, r, "POST /auth/register", &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[req.Username]; exists {
		writeError(w, http.StatusBadRequest, "username already registered")
		return
	}
	b.users[req.Username] = req.Password
	writeJSON(w, http.StatusOK, sdk.TokenResponse{AccessToken: b.issue(req.Username), TokenType: "bearer"})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req sdk.LoginRequest
	if !b.decode(w, r, "POST /auth/login", &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if pass, ok := b.users[req.Username]; !ok || pass != req.Password {
		writeError(w, http.StatusUnauthorized, "incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, sdk.TokenResponse{AccessToken: b.issue(req.Username), TokenType: "bearer"})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sdk.User{ID: 1, Username: userFrom(r.Context())})
}

func (b *Backend) listAgents(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []sdk.Agent{}
	for id := 1; id <= b.nextID; id++ {
		if rec, ok := b.agents[id]; ok && rec.owner == user {
			out = append(out, rec.agent)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createAgent(w http.ResponseWriter, r *http.Request) {
	var agent sdk.Agent
	if !b.decode(w, r, "POST /aiagents", &agent) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	agent.ID = b.nextID
	now := sdk.Now()
	agent.CreatedAt = &now
	b.agents[agent.ID] = &agentRecord{agent: agent, owner: userFrom(r.Context())}
	writeJSON(w, http.StatusOK, agent)
}

func (b *Backend) getAgent(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec.agent)
}

func (b *Backend) updateAgent(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if !b.decode(w, r, "PUT /aiagents/{id}", &patch) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.owned(w, r)
	if !ok {
		return
	}
	current, _ := json.Marshal(rec.agent)
	var merged map[string]interface{}
	_ = json.Unmarshal(current, &merged)
	for k, v := range patch {
		merged[k] = v
	}
	data, _ := json.Marshal(merged)
	var updated sdk.Agent
	if err := json.Unmarshal(data, &updated); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	updated.ID = rec.agent.ID
	rec.agent = updated
	writeJSON(w, http.StatusOK, updated)
}

func (b *Backend) deleteAgent(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailDelete != 0 {
		writeError(w, b.FailDelete, "delete failed")
		return
	}
	rec, ok := b.owned(w, r)
	if !ok {
		return
	}
	delete(b.agents, rec.agent.ID)
	writeJSON(w, http.StatusOK, map[string]string{"detail": "deleted"})
}

func (b *Backend) listConversations(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailConversations != 0 {
		writeError(w, b.FailConversations, "conversations unavailable")
		return
	}
	rec, ok := b.owned(w, r)
	if !ok {
		return
	}
	out := append([]sdk.Conversation{}, b.conversations[rec.agent.ID]...)
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createConversation(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.owned(w, r)
	if !ok {
		return
	}
	id := b.addConversation(rec.agent.ID)
	conversations := b.conversations[rec.agent.ID]
	for _, c := range conversations {
		if c.ID == id {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
}

func (b *Backend) listMessages(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.owned(w, r); !ok {
		return
	}
	cid, _ := strconv.Atoi(chi.URLParam(r, "cid"))
	writeJSON(w, http.StatusOK, append([]sdk.Message{}, b.messages[cid]...))
}

func (b *Backend) createMessage(w http.ResponseWriter, r *http.Request) {
	var req sdk.CreateMessageRequest
	if !b.decode(w, r, "POST /aiagents/{id}/conversations/{cid}/messages", &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailMessages != 0 {
		writeError(w, b.FailMessages, "message rejected")
		return
	}
	if _, ok := b.owned(w, r); !ok {
		return
	}
	cid, _ := strconv.Atoi(chi.URLParam(r, "cid"))
	b.nextID++
	msg := sdk.Message{ID: int64(b.nextID), ConversationID: cid, Role: req.Role, Content: req.Content, CreatedAt: sdk.Now()}
	b.messages[cid] = append(b.messages[cid], msg)
	writeJSON(w, http.StatusOK, msg)
}

func (b *Backend) inferenceV2(w http.ResponseWriter, r *http.Request) {
	var req sdk.TurnRequest
	if !b.decode(w, r, "POST /zerepy/v2", &req) {
		return
	}
	b.infer(w, req)
}

func (b *Backend) inferenceLegacy(w http.ResponseWriter, r *http.Request) {
	var req sdk.LegacyMessageRequest
	if !b.decode(w, r, "POST /zerepy", &req) {
		return
	}
	b.infer(w, sdk.TurnRequest{AgentID: req.AgentID, Messages: []sdk.Turn{{Role: sdk.RoleUser, Content: req.Message}}})
}

func (b *Backend) infer(w http.ResponseWriter, req sdk.TurnRequest) {
	b.mu.Lock()
	fn := b.Inference
	b.mu.Unlock()
	if fn == nil {
		fn = Echo
	}
	resp, status := fn(req)
	if status != 0 {
		writeError(w, status, "inference failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Echo answers with the last user turn as an action/result object.
func Echo(req sdk.TurnRequest) (interface{}, int) {
	last := ""
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Content
	}
	return map[string]string{"action": "reply", "result": "echo: " + last}, 0
}

func (b *Backend) owned(w http.ResponseWriter, r *http.Request) (*agentRecord, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid agent id")
		return nil, false
	}
	rec, ok := b.agents[id]
	if !ok || rec.owner != userFrom(r.Context()) {
		writeError(w, http.StatusNotFound, "AI Agent not found")
		return nil, false
	}
	return rec, true
}

func (b *Backend) addConversation(agentID int, messages ...sdk.Message) int {
	b.nextID++
	now := sdk.Timestamp{Time: time.Now().Add(time.Duration(b.nextID) * time.Millisecond)}
	conv := sdk.Conversation{ID: b.nextID, AgentID: agentID, CreatedAt: &now, UpdatedAt: &now}
	b.conversations[agentID] = append(b.conversations[agentID], conv)
	for i := range messages {
		messages[i].ConversationID = conv.ID
		if messages[i].ID == 0 {
			b.nextID++
			messages[i].ID = int64(b.nextID)
		}
	}
	b.messages[conv.ID] = append(b.messages[conv.ID], messages...)
	return conv.ID
}

func (b *Backend) issue(username string) string {
	token := fmt.Sprintf("token-%s-%d", username, len(b.tokens)+1)
	b.tokens[token] = username
	return token
}

func (b *Backend) decode(w http.ResponseWriter, r *http.Request, route string, target interface{}) bool {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	b.mu.Lock()
	b.bodies[route] = append(b.bodies[route], raw)
	b.mu.Unlock()
	if err := json.Unmarshal(raw, target); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
