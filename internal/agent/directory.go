package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/eazerepy/eazerepy/client/sdk"
	"go.uber.org/zap"
)

// Client is the part of the backend API used by the directory.
type Client interface {
	ListAgents(ctx context.Context) ([]sdk.Agent, error)
	GetAgent(ctx context.Context, id int) (*sdk.Agent, error)
	UpdateAgent(ctx context.Context, id int, req *sdk.UpdateAgentRequest) (*sdk.Agent, error)
	DeleteAgent(ctx context.Context, id int) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Edit is the full replacement sent by Update.
type Edit struct {
	Profile
	Credentials sdk.Credentials
}

// EditOf seeds an Edit from a loaded agent.
func EditOf(a *sdk.Agent) Edit {
	return Edit{Profile: ProfileOf(a), Credentials: a.Credentials.Clone()}
}

// Directory lists, shows, edits and deletes the user's agents and caches the last listing.
type Directory struct {
	client    Client
	confirmer Confirmer
	logger    *zap.Logger

	mu     sync.RWMutex
	agents []sdk.Agent
}

// NewDirectory creates a directory. A nil confirmer declines every deletion.
func NewDirectory(client Client, confirmer Confirmer, logger *zap.Logger) *Directory {
	if confirmer == nil {
		confirmer = ConfirmFunc(func(string) (bool, error) { return false, nil })
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{client: client, confirmer: confirmer, logger: logger}
}

// List loads the user's agents. An empty directory is not an error.
func (d *Directory) List(ctx context.Context) ([]sdk.Agent, error) {
	agents, err := d.client.ListAgents(ctx)
	if err != nil {
		d.logger.Error("failed to list agents", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrList, err)
	}
	if agents == nil {
		agents = []sdk.Agent{}
	}
	d.mu.Lock()
	d.agents = agents
	d.mu.Unlock()
	return append([]sdk.Agent(nil), agents...), nil
}

// Agents returns the last successful listing.
func (d *Directory) Agents() []sdk.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]sdk.Agent(nil), d.agents...)
}

// Get loads one agent; missing and foreign agents both map to ErrNotFound.
func (d *Directory) Get(ctx context.Context, id int) (*sdk.Agent, error) {
	agent, err := d.client.GetAgent(ctx, id)
	if err != nil {
		return nil, d.loadError(id, err)
	}
	return agent, nil
}

// Update validates edit and replaces the agent's editable fields and credentials.
func (d *Directory) Update(ctx context.Context, id int, edit Edit) (*sdk.Agent, error) {
	if len(edit.Bio) == 0 {
		return nil, ErrEmptyBio
	}
	name, twitter := edit.Name, edit.Twitter
	traits := edit.Traits
	if traits == nil {
		traits = []string{}
	}
	req := &sdk.UpdateAgentRequest{
		AgentName:    &name,
		AgentBio:     edit.Bio,
		AgentTwitter: &twitter,
		Traits:       &traits,
		Credentials:  edit.Credentials.Clone(),
	}
	updated, err := d.client.UpdateAgent(ctx, id, req)
	if err != nil {
		if sdk.IsNotFound(err) || sdk.IsForbidden(err) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		d.logger.Error("failed to update agent", zap.Int("agentId", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpdate, err)
	}
	return updated, nil
}

// Delete removes an agent after confirmation and refreshes the listing. A declined
// confirmation makes no request and reports false. A failed refresh does not fail the
// deletion; the deleted agent is dropped from the cached listing instead.
func (d *Directory) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := d.confirmer.Confirm("Are you sure you want to delete this agent?")
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := d.client.DeleteAgent(ctx, id); err != nil {
		d.logger.Error("failed to delete agent", zap.Int("agentId", id), zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrDelete, err)
	}
	if _, err := d.List(ctx); err != nil {
		d.logger.Warn("agent deleted but listing refresh failed", zap.Int("agentId", id), zap.Error(err))
		d.forget(id)
	}
	return true, nil
}

func (d *Directory) forget(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.agents[:0]
	for _, a := range d.agents {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	d.agents = kept
}

func (d *Directory) loadError(id int, err error) error {
	if sdk.IsNotFound(err) || sdk.IsForbidden(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	d.logger.Error("failed to load agent", zap.Int("agentId", id), zap.Error(err))
	return fmt.Errorf("%w: %v", ErrLoad, err)
}
