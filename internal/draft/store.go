package draft

import (
	"context"
	"sync"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/agent"
)

// Store keeps the two halves of a draft between wizard steps. Missing data loads with ok=false.
type Store interface {
	SaveProfile(ctx context.Context, profile agent.Profile) error
	LoadProfile(ctx context.Context) (agent.Profile, bool, error)
	SaveCredentials(ctx context.Context, creds sdk.Credentials) error
	LoadCredentials(ctx context.Context) (sdk.Credentials, bool, error)
	Clear(ctx context.Context) error
}

// MemoryStore holds a draft for the duration of one creation flow.
type MemoryStore struct {
	mu      sync.Mutex
	profile *agent.Profile
	creds   sdk.Credentials
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) SaveProfile(_ context.Context, profile agent.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := clone(profile)
	s.profile = &p
	return nil
}

func (s *MemoryStore) LoadProfile(context.Context) (agent.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return agent.Profile{}, false, nil
	}
	return clone(*s.profile), true, nil
}

func (s *MemoryStore) SaveCredentials(_ context.Context, creds sdk.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds.Clone()
	return nil
}

func (s *MemoryStore) LoadCredentials(context.Context) (sdk.Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return nil, false, nil
	}
	return s.creds.Clone(), true, nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.creds = nil
	return nil
}

func clone(p agent.Profile) agent.Profile {
	p.Bio = append([]string(nil), p.Bio...)
	p.Traits = append([]string(nil), p.Traits...)
	return p
}
