package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config that passes Validate.
func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validConfig().Validate())
}

func TestValidate_LogLevel(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate_LogFormat(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidate_EmptyCandidateList(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Tools.Gnina = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tools.gnina")
}

func TestValidate_ProbeTimeout(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Tools.ProbeTimeout = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tools.probe_timeout")
}

func TestValidate_BackendParams(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Backends.QVina.BoxSize = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backends.qvina.box_size")
}

func TestValidate_CNNScoringMode(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Backends.Gnina.CNNScoring = "maybe"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cnn_scoring")
}

func TestValidate_Workers(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Batch.Workers = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch.workers")
}

func TestValidate_MetricsListenAddr(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.ListenAddr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics.listen_addr")
}
