package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envKey, dir)
	assert.Equal(t, dir, Root())

	drafts := Path(KindDrafts)
	assert.Equal(t, filepath.Join(dir, KindDrafts), drafts)
	info, err := os.Stat(drafts)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, ConfigFile), ConfigPath())

	other := t.TempDir()
	t.Setenv(envKey, other)
	assert.Equal(t, other, Root())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "tilde", input: "~", expected: home},
		{name: "tilde path", input: "~/logs/app.log", expected: filepath.Join(home, "logs/app.log")},
		{name: "absolute", input: "/var/log/app.log", expected: "/var/log/app.log"},
		{name: "relative", input: "logs/app.log", expected: "logs/app.log"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExpandHome(tc.input))
		})
	}
}
