package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/agent"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

const (
	profileFile     = "profile.json"
	credentialsFile = "credentials.json"
)

// FileStore persists a draft as JSON documents under a base URL so the wizard steps can run as
// separate commands.
type FileStore struct {
	fs      afs.Service
	baseURL string
}

// NewFileStore creates a store rooted at baseURL (a directory path or afs URL).
func NewFileStore(baseURL string) *FileStore {
	return &FileStore{fs: afs.New(), baseURL: baseURL}
}

func (s *FileStore) SaveProfile(ctx context.Context, profile agent.Profile) error {
	return s.save(ctx, profileFile, profile)
}

func (s *FileStore) LoadProfile(ctx context.Context) (agent.Profile, bool, error) {
	var profile agent.Profile
	ok, err := s.load(ctx, profileFile, &profile)
	return profile, ok, err
}

func (s *FileStore) SaveCredentials(ctx context.Context, creds sdk.Credentials) error {
	return s.save(ctx, credentialsFile, creds)
}

func (s *FileStore) LoadCredentials(ctx context.Context) (sdk.Credentials, bool, error) {
	creds := sdk.Credentials{}
	if ok, err := s.load(ctx, credentialsFile, &creds); !ok {
		return nil, false, err
	}
	return creds, true, nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	for _, name := range []string{profileFile, credentialsFile} {
		URL := s.url(name)
		if ok, _ := s.fs.Exists(ctx, URL); !ok {
			continue
		}
		if err := s.fs.Delete(ctx, URL); err != nil {
			return fmt.Errorf("failed to clear draft %s: %w", name, err)
		}
	}
	return nil
}

func (s *FileStore) url(name string) string {
	return url.Join(s.baseURL, name)
}

func (s *FileStore) save(ctx context.Context, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if ok, _ := s.fs.Exists(ctx, s.baseURL); !ok {
		if err := s.fs.Create(ctx, s.baseURL, file.DefaultDirOsMode, true); err != nil {
			return fmt.Errorf("failed to create draft folder: %w", err)
		}
	}
	if err := s.fs.Upload(ctx, s.url(name), 0o600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", name, err)
	}
	return nil
}

// load reads a document; absent or unreadable documents count as no draft.
func (s *FileStore) load(ctx context.Context, name string, v interface{}) (bool, error) {
	URL := s.url(name)
	if ok, _ := s.fs.Exists(ctx, URL); !ok {
		return false, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return false, fmt.Errorf("failed to read draft %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}
