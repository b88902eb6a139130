// Package draft carries an agent definition through the two creation steps and submits it.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/agent"
)

// DefaultName is used when the draft has no name.
const DefaultName = "Default Agent Name"

// ErrCreate wraps a failed create call.
var ErrCreate = errors.New("failed to create agent")

// Creator submits the final create request.
type Creator interface {
	CreateAgent(ctx context.Context, req *sdk.CreateAgentRequest) (*sdk.Agent, error)
}

// Flow coordinates one creation: profile step, credential step, submit.
type Flow struct {
	store Store
}

// NewFlow creates a flow over store; a nil store uses a fresh MemoryStore.
func NewFlow(store Store) *Flow {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Flow{store: store}
}

// Begin saves the profile step.
func (f *Flow) Begin(ctx context.Context, profile agent.Profile) error {
	return f.store.SaveProfile(ctx, profile)
}

// Configure saves the credential step.
func (f *Flow) Configure(ctx context.Context, creds sdk.Credentials) error {
	return f.store.SaveCredentials(ctx, creds)
}

// Profile returns the saved profile step, or a zero profile when there is none.
func (f *Flow) Profile(ctx context.Context) (agent.Profile, bool, error) {
	return f.store.LoadProfile(ctx)
}

// Request combines both steps into a create request. Missing steps fall back to defaults:
// the default name, empty lists and an empty string for every credential key.
func (f *Flow) Request(ctx context.Context) (*sdk.CreateAgentRequest, error) {
	profile, _, err := f.store.LoadProfile(ctx)
	if err != nil {
		return nil, err
	}
	creds, _, err := f.store.LoadCredentials(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = DefaultName
	}
	req := &sdk.CreateAgentRequest{
		AgentName:    name,
		AgentBio:     nonNil(profile.Bio),
		AgentTwitter: profile.Twitter,
		Traits:       nonNil(profile.Traits),
		Credentials:  sdk.Credentials{},
	}
	for _, field := range sdk.CredentialFields() {
		req.Credentials[field] = strings.TrimSpace(creds.Get(field))
	}
	return req, nil
}

// Submit sends the create request and clears the draft when it succeeds.
func (f *Flow) Submit(ctx context.Context, creator Creator) (*sdk.Agent, error) {
	req, err := f.Request(ctx)
	if err != nil {
		return nil, err
	}
	created, err := creator.CreateAgent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreate, err)
	}
	if err := f.store.Clear(ctx); err != nil {
		return created, fmt.Errorf("agent %d created but draft not cleared: %w", created.ID, err)
	}
	return created, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
