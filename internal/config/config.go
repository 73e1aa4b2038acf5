// Package config defines all configuration structures for the scoredock
// pipeline.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LoggingConfig holds structured-logging tunables.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"

	// OutputPaths is where log entries go.  Defaults to ["stderr"] so batch
	// results on stdout stay machine-readable.
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// DataConfig controls how input structure paths are resolved.
type DataConfig struct {
	// Root is the local data directory that stale absolute paths are
	// re-rooted beneath.  It stands in for everything up to and including
	// the marker segment.  Empty disables re-rooting.
	Root string `mapstructure:"root"`

	// PathMarker is the path segment at which re-rooting splits an input
	// path; everything after the marker is joined under Root.
	PathMarker string `mapstructure:"path_marker"`
}

// ToolsConfig holds the executable candidate lists for every external tool
// the pipeline drives.  Candidates are tried in order: entries containing a
// path separator are checked on disk, bare names resolve via PATH.
type ToolsConfig struct {
	Converter   []string `mapstructure:"converter"`
	QVina       []string `mapstructure:"qvina"`
	Gnina       []string `mapstructure:"gnina"`
	Autogrid    []string `mapstructure:"autogrid"`
	AutoDockGPU []string `mapstructure:"autodock_gpu"`

	// ProbeTimeout bounds the verification probe run against a candidate.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// BackendParams holds the per-backend docking defaults; request-level
// overrides win over these.
type BackendParams struct {
	BoxSize        float64 `mapstructure:"box_size"`
	Exhaustiveness int     `mapstructure:"exhaustiveness"`
	NumRuns        int     `mapstructure:"num_runs"`
	CNNScoring     string  `mapstructure:"cnn_scoring"`
}

// BackendsConfig groups the per-engine defaults.
type BackendsConfig struct {
	QVina       BackendParams `mapstructure:"qvina"`
	Gnina       BackendParams `mapstructure:"gnina"`
	AutoDockGPU BackendParams `mapstructure:"autodock_gpu"`
}

// BatchConfig holds batch-evaluation tunables.
type BatchConfig struct {
	// Workers is the number of concurrent scoring workers.
	Workers int `mapstructure:"workers"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Namespace  string `mapstructure:"namespace"`
	Subsystem  string `mapstructure:"subsystem"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the scoredock pipeline.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Data     DataConfig     `mapstructure:"data"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Backends BackendsConfig `mapstructure:"backends"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

var validLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {},
}

var validLogFormats = map[string]struct{}{
	"json": {}, "console": {},
}

var validCNNScoring = map[string]struct{}{
	"none": {}, "rescore": {}, "refinement": {}, "all": {},
}

// Validate checks cfg for internally inconsistent or out-of-range values.
// It must be called after ApplyDefaults so defaulted fields are populated.
func (c *Config) Validate() error {
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}

	if c.Tools.ProbeTimeout <= 0 {
		return fmt.Errorf("tools.probe_timeout: must be positive, got %s", c.Tools.ProbeTimeout)
	}
	for name, candidates := range map[string][]string{
		"converter":    c.Tools.Converter,
		"qvina":        c.Tools.QVina,
		"gnina":        c.Tools.Gnina,
		"autogrid":     c.Tools.Autogrid,
		"autodock_gpu": c.Tools.AutoDockGPU,
	} {
		if len(candidates) == 0 {
			return fmt.Errorf("tools.%s: candidate list is empty", name)
		}
	}

	for name, p := range map[string]BackendParams{
		"qvina":        c.Backends.QVina,
		"gnina":        c.Backends.Gnina,
		"autodock_gpu": c.Backends.AutoDockGPU,
	} {
		if p.BoxSize <= 0 {
			return fmt.Errorf("backends.%s.box_size: must be positive, got %g", name, p.BoxSize)
		}
		if p.Exhaustiveness <= 0 {
			return fmt.Errorf("backends.%s.exhaustiveness: must be positive, got %d", name, p.Exhaustiveness)
		}
		if p.NumRuns <= 0 {
			return fmt.Errorf("backends.%s.num_runs: must be positive, got %d", name, p.NumRuns)
		}
	}
	if _, ok := validCNNScoring[c.Backends.Gnina.CNNScoring]; !ok {
		return fmt.Errorf("backends.gnina.cnn_scoring: unknown mode %q", c.Backends.Gnina.CNNScoring)
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers: must be at least 1, got %d", c.Batch.Workers)
	}

	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("metrics.listen_addr: required when metrics are enabled")
	}

	return nil
}
