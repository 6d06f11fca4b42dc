package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1000, cfg.Queues.Render)
	require.Equal(t, 500, cfg.Queues.Generic)
	require.Equal(t, 100, cfg.Queues.Callback)
	require.Equal(t, 256, cfg.Queues.FrameEvents)
	require.Equal(t, 200, cfg.Queues.Resource)
	require.Equal(t, uint32(100), cfg.Executor.RateLimitPerAgent)
	require.False(t, cfg.Executor.AuditLogging)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helix.toml")
	content := `
[queues]
generic = 64

[executor]
rate_limit_per_agent = 25
audit_logging = true

[audio]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden values
	require.Equal(t, 64, cfg.Queues.Generic)
	require.Equal(t, uint32(25), cfg.Executor.RateLimitPerAgent)
	require.True(t, cfg.Executor.AuditLogging)
	require.False(t, cfg.Audio.Enabled)

	// Untouched values keep their defaults
	require.Equal(t, 1000, cfg.Queues.Render)
	require.Equal(t, 44100, cfg.Audio.SampleRate)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/helix.toml")
	require.Error(t, err)
}

func TestValidateRejectsBadCapacity(t *testing.T) {
	cfg := Default()
	cfg.Queues.Callback = 0

	err := cfg.Validate()
	require.Error(t, err)

	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "queues.callback", cerr.Field)
}

func TestValidateRejectsBadVolume(t *testing.T) {
	cfg := Default()
	cfg.Audio.MasterVolume = 1.5
	require.Error(t, cfg.Validate())
}

func TestRateLimitZeroIsAllowed(t *testing.T) {
	cfg := Default()
	cfg.Executor.RateLimitPerAgent = 0
	require.NoError(t, cfg.Validate(), "0 means disabled, not invalid")
}
