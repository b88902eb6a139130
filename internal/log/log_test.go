package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name     string
		opts     Options
		expected zapcore.Level
		wantErr  bool
	}{
		{name: "default", opts: Options{}, expected: zapcore.InfoLevel},
		{name: "warn", opts: Options{Level: "warn"}, expected: zapcore.WarnLevel},
		{name: "verbose wins", opts: Options{Level: "error", Verbose: true}, expected: zapcore.DebugLevel},
		{name: "invalid", opts: Options{Level: "loud"}, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.File = filepath.Join(t.TempDir(), "logs", "app.log")
			logger, err := New(tc.opts)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.expected))
			if tc.expected > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tc.expected-1))
			}
			logger.Info("hello")
			_ = logger.Sync()
		})
	}
}

func TestNew_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(Options{File: file})
	require.NoError(t, err)
	logger.Info("written")
	_ = logger.Sync()
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)
}
