package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/viant/scy"
)

const scyKey = "blowfish://default"

// scyRecord is the on-disk (encrypted) representation of the bearer token.
type scyRecord struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"savedAt"`
}

// ScyStore persists the bearer token in one file encrypted at rest with scy.
type ScyStore struct {
	mu   sync.Mutex
	path string
	svc  *scy.Service
}

// NewScyStore creates a scy-backed token store writing to path.
func NewScyStore(path string) (*ScyStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("scy store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return &ScyStore{path: path, svc: scy.New()}, nil
}

func (s *ScyStore) url() string {
	return "file://" + s.path
}

// Token returns the stored token; a missing file yields "".
func (s *ScyStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return "", nil
	}
	secret, err := s.svc.Load(ctx, scy.NewResource(nil, s.url(), scyKey))
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	var rec scyRecord
	if err := json.Unmarshal([]byte(secret.String()), &rec); err != nil {
		return "", fmt.Errorf("failed to decode token: %w", err)
	}
	return rec.Token, nil
}

// SetToken encrypts and writes token.
func (s *ScyStore) SetToken(ctx context.Context, token string) error {
	payload, err := json.Marshal(scyRecord{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res := scy.NewResource(nil, s.url(), scyKey)
	return s.svc.Store(ctx, scy.NewSecret(payload, res))
}

// ClearToken removes the token file.
func (s *ScyStore) ClearToken(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
