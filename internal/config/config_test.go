package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefault(t *testing.T) {
	location := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, InferenceV2, cfg.Inference)
	assert.Equal(t, "/auth/me", cfg.Auth.ProbePath)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, defaultYAML, data)
}

func TestLoad_ExistingFileAndEnv(t *testing.T) {
	location := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(location, []byte("apiURL: https://api.example.com\ninference: legacy\ntimeout: 30s\n"), 0o644))
	t.Setenv("EAZEREPY_CONVERSATION", "latest")

	cfg, err := Load(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, InferenceLegacy, cfg.Inference)
	assert.Equal(t, "latest", cfg.Conversation)
	assert.Equal(t, "/auth/login", cfg.Auth.LoginPath)
	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	env := map[string]string{
		"EAZEREPY_API_URL":   "https://override",
		"EAZEREPY_LOG_LEVEL": "debug",
		"EAZEREPY_TIMEOUT":   " ",
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	assert.Equal(t, "https://override", cfg.APIURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "0s", cfg.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.APIURL = "" }, wantErr: true},
		{name: "non http url", mutate: func(c *Config) { c.APIURL = "ftp://host" }, wantErr: true},
		{name: "bad timeout", mutate: func(c *Config) { c.Timeout = "soon" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = "-1s" }, wantErr: true},
		{name: "bad inference", mutate: func(c *Config) { c.Inference = "v3" }, wantErr: true},
		{name: "bad selector", mutate: func(c *Config) { c.Conversation = "random" }, wantErr: true},
		{name: "relative auth path", mutate: func(c *Config) { c.Auth.LoginPath = "login" }, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			tc.mutate(cfg)
			if tc.wantErr {
				assert.Error(t, cfg.Validate())
				return
			}
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Locations(t *testing.T) {
	t.Setenv("EAZEREPY_WORKSPACE", t.TempDir())
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "token.enc", filepath.Base(cfg.TokenFile()))
	assert.Equal(t, "drafts", filepath.Base(cfg.DraftsURL()))
	assert.Equal(t, "eazerepy.log", filepath.Base(cfg.LogFile()))

	cfg.Drafts = "gs://bucket/drafts"
	assert.Equal(t, "gs://bucket/drafts", cfg.DraftsURL())
}
