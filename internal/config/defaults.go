package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultPathMarker = "data"

	DefaultProbeTimeout = 2 * time.Second

	DefaultBoxSize             = 20.0
	DefaultQVinaExhaustiveness = 16
	DefaultGninaExhaustiveness = 8
	DefaultADGPUExhaustiveness = 8
	DefaultNumRuns             = 1
	DefaultCNNScoring          = "rescore"

	DefaultMetricsNamespace = "scoredock"
)

// defaultToolCandidates lists the well-known names and install locations per
// tool.  GPU engine builds are named by work-item width, widest first; the
// grid generator commonly lives in a per-user AutoDock install rather than on
// PATH.
func defaultToolCandidates() ToolsConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return ToolsConfig{
		Converter: []string{"obabel"},
		QVina:     []string{"qvina2.1", "qvina2", "qvina"},
		Gnina:     []string{"gnina"},
		Autogrid: []string{
			"autogrid4",
			filepath.Join(home, "autodock", "autogrid4"),
			filepath.Join(home, "x86_64Linux3", "autogrid4"),
		},
		AutoDockGPU: []string{
			"autodock_gpu_128wi",
			"autodock_gpu_64wi",
			"autodock_gpu",
		},
		ProbeTimeout: DefaultProbeTimeout,
	}
}

// ApplyDefaults fills every zero-value field in cfg with the pipeline
// default.  Fields already set by the caller are left unchanged so explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Logging ───────────────────────────────────────────────────────────────
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if len(cfg.Logging.OutputPaths) == 0 {
		cfg.Logging.OutputPaths = []string{"stderr"}
	}
	if len(cfg.Logging.ErrorOutputPaths) == 0 {
		cfg.Logging.ErrorOutputPaths = []string{"stderr"}
	}

	// ── Data ──────────────────────────────────────────────────────────────────
	if cfg.Data.PathMarker == "" {
		cfg.Data.PathMarker = DefaultPathMarker
	}

	// ── Tools ─────────────────────────────────────────────────────────────────
	d := defaultToolCandidates()
	if len(cfg.Tools.Converter) == 0 {
		cfg.Tools.Converter = d.Converter
	}
	if len(cfg.Tools.QVina) == 0 {
		cfg.Tools.QVina = d.QVina
	}
	if len(cfg.Tools.Gnina) == 0 {
		cfg.Tools.Gnina = d.Gnina
	}
	if len(cfg.Tools.Autogrid) == 0 {
		cfg.Tools.Autogrid = d.Autogrid
	}
	if len(cfg.Tools.AutoDockGPU) == 0 {
		cfg.Tools.AutoDockGPU = d.AutoDockGPU
	}
	if cfg.Tools.ProbeTimeout == 0 {
		cfg.Tools.ProbeTimeout = DefaultProbeTimeout
	}

	// ── Backends ──────────────────────────────────────────────────────────────
	applyBackendDefaults(&cfg.Backends.QVina, DefaultQVinaExhaustiveness)
	applyBackendDefaults(&cfg.Backends.Gnina, DefaultGninaExhaustiveness)
	applyBackendDefaults(&cfg.Backends.AutoDockGPU, DefaultADGPUExhaustiveness)

	// ── Batch ─────────────────────────────────────────────────────────────────
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = runtime.NumCPU()
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9090"
	}
}

func applyBackendDefaults(p *BackendParams, exhaustiveness int) {
	if p.BoxSize == 0 {
		p.BoxSize = DefaultBoxSize
	}
	if p.Exhaustiveness == 0 {
		p.Exhaustiveness = exhaustiveness
	}
	if p.NumRuns == 0 {
		p.NumRuns = DefaultNumRuns
	}
	if p.CNNScoring == "" {
		p.CNNScoring = DefaultCNNScoring
	}
}
