// Package cli implements the scoredock command tree: the root command with
// global flags and pipeline wiring, `score` for a single ligand, `batch` for
// manifest-driven runs, and `backends` for listing the available engines.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scoredock/scoredock/internal/application/evaluation"
	"github.com/scoredock/scoredock/internal/config"
	"github.com/scoredock/scoredock/internal/domain/docking"
	"github.com/scoredock/scoredock/internal/domain/structure"
	"github.com/scoredock/scoredock/internal/infrastructure/execution"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/prometheus"
	"github.com/scoredock/scoredock/internal/infrastructure/toolchain"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	DataRoot   string
	Workers    int
}

// CLIContext carries the initialized pipeline through the command tree.
type CLIContext struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.PipelineMetrics
	Scorer    *docking.Scorer
	Batch     *evaluation.Service
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scoredock",
		Short: "scoredock — binding-affinity scoring via external docking engines",
		Long: "scoredock evaluates protein-ligand binding affinity by delegating to\n" +
			"external docking engines (QuickVina, gnina, AutoDock-GPU), handling\n" +
			"structure preparation, grid precomputation, and result parsing.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./scoredock.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&opts.DataRoot, "data-root", "", "data root for re-rooting stale input paths")
	pf.IntVar(&opts.Workers, "workers", 0, "batch worker count override")

	cmd.AddCommand(
		newScoreCmd(),
		newBatchCmd(),
		newBackendsCmd(),
	)
	return cmd
}

// persistentPreRun loads configuration, applies flag overrides, builds the
// scoring pipeline, and stores the CLIContext on the command context.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.DataRoot != "" {
		cfg.Data.Root = opts.DataRoot
	}
	if opts.Workers > 0 {
		cfg.Batch.Workers = opts.Workers
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      cfg.Logging.OutputPaths,
		ErrorOutputPaths: cfg.Logging.ErrorOutputPaths,
	})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.WithValue(cmd.Context(), cliContextKey{}, cliCtx)
	cmd.SetContext(ctx)
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./scoredock.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".scoredock", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/scoredock/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}

	// No config file found; env vars and defaults only.
	return config.LoadFromEnv()
}

// buildPipeline wires the full scoring pipeline from configuration: metrics,
// process runner, tool resolver, structure converter, the three engine
// adapters, the façade, and the batch service.
func buildPipeline(cfg *config.Config, logger logging.Logger) (*CLIContext, error) {
	var collector prometheus.MetricsCollector
	metrics := prometheus.NopPipelineMetrics()
	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: cfg.Metrics.Subsystem,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics initialization failed: %w", err)
		}
		collector = c
		metrics = prometheus.NewPipelineMetrics(c)
	}

	runner := execution.NewRunner(logger, metrics)
	resolver := toolchain.NewResolver(toolSpecs(cfg.Tools), runner, logger, metrics)
	converter := structure.NewConverter(resolver, runner, logger, metrics)

	registry := docking.NewRegistry(
		docking.NewQVinaBackend(converter, runner, resolver, logger, backendParams(cfg.Backends.QVina)),
		docking.NewGninaBackend(runner, resolver, logger, backendParams(cfg.Backends.Gnina)),
		docking.NewAutoDockGPUBackend(converter, runner, resolver, logger, metrics, backendParams(cfg.Backends.AutoDockGPU)),
	)
	scorer := docking.NewScorer(registry, cfg.Data.Root, cfg.Data.PathMarker, logger, metrics)

	return &CLIContext{
		Config:    cfg,
		Logger:    logger,
		Collector: collector,
		Metrics:   metrics,
		Scorer:    scorer,
		Batch:     evaluation.NewService(scorer, cfg.Batch.Workers, logger, metrics),
	}, nil
}

// toolSpecs maps the configured candidate lists onto resolver specs.  Only
// the grid generator carries a verification probe: its common install
// locations are littered with same-named wrapper scripts, and a candidate
// that cannot print its banner would fail mid-protocol otherwise.
func toolSpecs(tools config.ToolsConfig) map[string]toolchain.Spec {
	return map[string]toolchain.Spec{
		structure.ConverterTool: {Candidates: tools.Converter},
		docking.QVinaTool:       {Candidates: tools.QVina},
		docking.GninaTool:       {Candidates: tools.Gnina},
		docking.AutogridTool: {
			Candidates: tools.Autogrid,
			Probe:      &toolchain.Probe{Flag: "-h", Expect: "AutoGrid", Timeout: tools.ProbeTimeout},
		},
		docking.AutoDockGPUTool: {Candidates: tools.AutoDockGPU},
	}
}

func backendParams(p config.BackendParams) docking.Params {
	return docking.Params{
		BoxSize:        p.BoxSize,
		Exhaustiveness: p.Exhaustiveness,
		NumRuns:        p.NumRuns,
		CNNScoring:     p.CNNScoring,
	}
}

// GetCLIContext extracts the CLIContext stored by persistentPreRun.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	cliCtx, ok := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("pipeline not initialized")
	}
	return cliCtx, nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
