package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, []string{"stderr"}, cfg.Logging.OutputPaths)
	assert.Equal(t, DefaultPathMarker, cfg.Data.PathMarker)
	assert.Equal(t, []string{"obabel"}, cfg.Tools.Converter)
	assert.NotEmpty(t, cfg.Tools.AutoDockGPU)
	assert.Equal(t, DefaultQVinaExhaustiveness, cfg.Backends.QVina.Exhaustiveness)
	assert.Equal(t, DefaultGninaExhaustiveness, cfg.Backends.Gnina.Exhaustiveness)
	assert.Equal(t, DefaultCNNScoring, cfg.Backends.Gnina.CNNScoring)
	assert.GreaterOrEqual(t, cfg.Batch.Workers, 1)
}

func TestApplyDefaults_ExplicitValuesWin(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Batch.Workers = 2
	cfg.Backends.QVina.Exhaustiveness = 32
	cfg.Tools.QVina = []string{"/opt/qvina/qvina2.1"}
	ApplyDefaults(cfg)

	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, 32, cfg.Backends.QVina.Exhaustiveness)
	assert.Equal(t, []string{"/opt/qvina/qvina2.1"}, cfg.Tools.QVina)
}

func TestApplyDefaults_NilIsSafe(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
