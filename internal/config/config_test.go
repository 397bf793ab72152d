package config

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MO_ANALYZE_PATH", "MO_ANALYZE_WORKERS", "MO_ANALYZE_WATCH", "MO_LOG_LEVEL", "MO_LOG_FORMAT", "MO_LOG_OUTPUT", "MO_METRICS_ADDR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Path)
	assert.Equal(t, 0, cfg.Workers)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "", cfg.MetricsAddr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MO_ANALYZE_PATH", "~/projects")
	t.Setenv("MO_ANALYZE_WORKERS", "12")
	t.Setenv("MO_ANALYZE_WATCH", "false")
	t.Setenv("MO_METRICS_ADDR", ":9100")

	cfg, err := Load()
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "projects"), cfg.Path)
	assert.Equal(t, 12, cfg.Workers)
	assert.False(t, cfg.Watch)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestLoadIgnoresBadNumbers(t *testing.T) {
	t.Setenv("MO_ANALYZE_WORKERS", "-3")
	t.Setenv("MO_ANALYZE_WATCH", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Workers)
	assert.True(t, cfg.Watch)
}
