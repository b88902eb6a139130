package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// envKey is the environment variable used to override the default workspace root.
	envKey = "EAZEREPY_WORKSPACE"

	// defaultRootDir is used when the env variable is not defined.
	defaultRootDir = ".eazerepy"
)

// Predefined kinds.
const (
	KindDrafts = "drafts"
	KindAuth   = "auth"
	KindLogs   = "logs"
)

// ConfigFile is the name of the configuration file under the root.
const ConfigFile = "config.yaml"

var (
	mu         sync.Mutex
	cachedRoot string
)

// Root returns the absolute path to the workspace directory.
// The lookup order is:
//  1. $EAZEREPY_WORKSPACE environment variable, if set and non-empty
//  2. ./.eazerepy under the current working directory
//
// The result is cached; a changed $EAZEREPY_WORKSPACE replaces the cached value.
func Root() string {
	mu.Lock()
	defer mu.Unlock()
	if env := strings.TrimSpace(os.Getenv(envKey)); env != "" {
		if root := abs(ExpandHome(env)); root != cachedRoot {
			cachedRoot = root
			_ = os.MkdirAll(cachedRoot, 0755)
		}
		return cachedRoot
	}
	if cachedRoot != "" {
		return cachedRoot
	}
	wd, err := os.Getwd()
	if err != nil {
		cachedRoot = abs(defaultRootDir)
		return cachedRoot
	}
	cachedRoot = abs(filepath.Join(wd, defaultRootDir))
	_ = os.MkdirAll(cachedRoot, 0755)
	return cachedRoot
}

// Path returns a sub-path under the root for the given kind (e.g. "drafts").
func Path(kind string) string {
	dir := filepath.Join(Root(), kind)
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// ConfigPath returns the default configuration file location.
func ConfigPath() string {
	return filepath.Join(Root(), ConfigFile)
}

// ExpandHome replaces a leading "~" with the user home directory.
func ExpandHome(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed != "~" && !strings.HasPrefix(trimmed, "~/") {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v
	}
	return filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
}

func abs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}
