// Package config loads the client configuration.
package config

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/eazerepy/eazerepy/internal/workspace"
)

//go:embed config.yaml
var defaultYAML []byte

// Inference modes.
const (
	InferenceV2     = "v2"
	InferenceLegacy = "legacy"
)

// Config is the client configuration.
type Config struct {
	APIURL       string `yaml:"apiURL"`
	Timeout      string `yaml:"timeout"`
	Inference    string `yaml:"inference"`
	Conversation string `yaml:"conversation"`
	RequestID    bool   `yaml:"requestId"`
	Auth         Auth   `yaml:"auth"`
	Drafts       string `yaml:"drafts"`
	Log          Log    `yaml:"log"`
}

// Auth holds the auth endpoint paths and token location.
type Auth struct {
	LoginPath    string `yaml:"loginPath"`
	RegisterPath string `yaml:"registerPath"`
	ProbePath    string `yaml:"probePath"`
	TokenFile    string `yaml:"tokenFile"`
}

// Log configures the zap logger.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		return nil, fmt.Errorf("invalid embedded config: %w", err)
	}
	return cfg, nil
}

// Load reads the configuration at location, writing the embedded default there first when it
// does not exist. An empty location means the workspace config file. A .env file in the working
// directory and EAZEREPY_* variables override file values.
func Load(ctx context.Context, location string) (*Config, error) {
	if strings.TrimSpace(location) == "" {
		location = workspace.ConfigPath()
	}
	cfg, err := loadOrCreate(ctx, location)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadOrCreate(ctx context.Context, location string) (*Config, error) {
	fs := afs.New()
	if ok, _ := fs.Exists(ctx, location); ok {
		data, err := fs.DownloadWithURL(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", location, err)
		}
		cfg := &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", location, err)
		}
		return cfg, nil
	}
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	parent, _ := url.Split(location, file.Scheme)
	_ = fs.Create(ctx, parent, file.DefaultDirOsMode, true)
	if err := fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(defaultYAML)); err != nil {
		return nil, fmt.Errorf("failed to write default config %s: %w", location, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from EAZEREPY_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	set("EAZEREPY_API_URL", &c.APIURL)
	set("EAZEREPY_TIMEOUT", &c.Timeout)
	set("EAZEREPY_INFERENCE", &c.Inference)
	set("EAZEREPY_CONVERSATION", &c.Conversation)
	set("EAZEREPY_LOG_LEVEL", &c.Log.Level)
	set("EAZEREPY_LOG_FILE", &c.Log.File)
	set("EAZEREPY_DRAFTS", &c.Drafts)
}

func (c *Config) applyDefaults() {
	if c.Inference == "" {
		c.Inference = InferenceV2
	}
	if c.Conversation == "" {
		c.Conversation = "first"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Auth.LoginPath == "" {
		c.Auth.LoginPath = "/auth/login"
	}
	if c.Auth.RegisterPath == "" {
		c.Auth.RegisterPath = "/auth/register"
	}
	if c.Auth.ProbePath == "" {
		c.Auth.ProbePath = "/auth/me"
	}
}

// Validate checks that required fields are set and well formed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("apiURL cannot be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("apiURL must be an http(s) URL: %q", c.APIURL)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	switch c.Inference {
	case InferenceV2, InferenceLegacy:
	default:
		return fmt.Errorf("inference must be %q or %q: %q", InferenceV2, InferenceLegacy, c.Inference)
	}
	switch strings.ToLower(c.Conversation) {
	case "first", "latest":
	default:
		return fmt.Errorf("conversation must be first or latest: %q", c.Conversation)
	}
	for _, p := range []string{c.Auth.LoginPath, c.Auth.RegisterPath, c.Auth.ProbePath} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("auth path must start with '/': %q", p)
		}
	}
	return nil
}

// TimeoutDuration parses Timeout; empty means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	return d, nil
}

// TokenFile returns the encrypted token location.
func (c *Config) TokenFile() string {
	if c.Auth.TokenFile != "" {
		return workspace.ExpandHome(c.Auth.TokenFile)
	}
	return filepath.Join(workspace.Path(workspace.KindAuth), "token.enc")
}

// DraftsURL returns the draft folder.
func (c *Config) DraftsURL() string {
	if c.Drafts != "" {
		return workspace.ExpandHome(c.Drafts)
	}
	return workspace.Path(workspace.KindDrafts)
}

// LogFile returns the log file location.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return workspace.ExpandHome(c.Log.File)
	}
	return filepath.Join(workspace.Path(workspace.KindLogs), "eazerepy.log")
}
