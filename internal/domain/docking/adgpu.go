package docking

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/scoredock/scoredock/internal/domain/structure"
	"github.com/scoredock/scoredock/internal/infrastructure/execution"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/prometheus"
	"github.com/scoredock/scoredock/internal/infrastructure/toolchain"
	"github.com/scoredock/scoredock/pkg/errors"
)

// AutoDockGPUTool is the logical toolchain name of the grid-based engine.
const AutoDockGPUTool = "autodock-gpu"

// nevScaleFactor maps the abstract exhaustiveness knob onto the engine's
// native energy-evaluation count (nev), roughly matching one Vina
// exhaustiveness unit.
const nevScaleFactor = 312500

// resultPrefix names the engine's report artifacts inside the workspace.
const resultPrefix = "docking_result"

// adgpuBackend adapts the grid-based GPU engine.  Its protocol is the most
// elaborate of the three: structures are prepared to PDBQT, the atom-type
// inventories and box geometry are compiled into a grid-parameter artifact,
// the grid-field generator precomputes energy maps inside an ephemeral
// workspace, and only then does the engine dock and report.
type adgpuBackend struct {
	converter *structure.Converter
	runner    execution.Runner
	resolver  toolchain.Resolver
	logger    logging.Logger
	metrics   *prometheus.PipelineMetrics
	defaults  Params
}

// NewAutoDockGPUBackend constructs the grid-based engine adapter.
func NewAutoDockGPUBackend(converter *structure.Converter, runner execution.Runner, resolver toolchain.Resolver, logger logging.Logger, metrics *prometheus.PipelineMetrics, defaults Params) Backend {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NopPipelineMetrics()
	}
	return &adgpuBackend{
		converter: converter,
		runner:    runner,
		resolver:  resolver,
		logger:    logger.Named("adgpu"),
		metrics:   metrics,
		defaults:  defaults,
	}
}

func (b *adgpuBackend) Name() string { return BackendAutoDockGPU }

func (b *adgpuBackend) Score(ctx context.Context, req Request) (float64, error) {
	center, err := boxCenter(req.LigandPath)
	if err != nil {
		return 0, err
	}

	// Stage 1: prepare.  Conversion artifacts live next to the sources and
	// are reused across requests against the same target.
	receptor, err := b.converter.PrepareReceptor(ctx, req.ProteinPath)
	if err != nil {
		return 0, err
	}
	ligand, err := b.converter.PrepareLigand(ctx, req.LigandPath)
	if err != nil {
		return 0, err
	}

	// Everything from here on is per-request state; the workspace is removed
	// on every exit path.
	ws, err := NewWorkspace(BackendAutoDockGPU, b.logger, b.metrics)
	if err != nil {
		return 0, err
	}
	defer ws.Remove()

	// The generator insists on the receptor sitting beside the parameter
	// file, so work on a private copy.
	wsReceptor, err := ws.ImportFile(receptor)
	if err != nil {
		return 0, err
	}

	// Stage 2: type inventory.
	receptorTypes, err := structure.AtomTypes(wsReceptor)
	if err != nil {
		return 0, err
	}
	ligandTypes, err := structure.AtomTypes(ligand)
	if err != nil {
		return 0, err
	}

	// Stage 3: grid description.
	grid := GridParams{
		ReceptorFile:  filepath.Base(wsReceptor),
		ReceptorTypes: receptorTypes,
		LigandTypes:   ligandTypes,
		Center:        center,
	}
	gpfPath, err := grid.WriteTo(ws)
	if err != nil {
		return 0, err
	}

	// Stage 4: grid generation.  No maps, no docking.
	if err := generateGrids(ctx, b.resolver, b.runner, ws, gpfPath); err != nil {
		return 0, err
	}

	// Stage 5: dock and parse.
	engine, err := b.resolver.Resolve(ctx, AutoDockGPUTool)
	if err != nil {
		return 0, err
	}

	p := req.Params.merged(b.defaults)
	nev := p.Exhaustiveness * nevScaleFactor

	args := []string{
		"--ffile", ws.Path(grid.FieldFile()),
		"--lfile", ligand,
		"--nrun", strconv.Itoa(p.NumRuns),
		"--nev", strconv.Itoa(nev),
		"--resnam", ws.Path(resultPrefix),
		"--dlgoutput", "1",
		"--xmloutput", "0",
	}

	res, err := b.runner.Run(ctx, execution.Command{Path: engine, Args: args, Dir: ws.Dir})
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeToolFailure, "docking engine did not run")
	}
	if !res.Ok() {
		return 0, errors.Newf(errors.CodeToolFailure,
			"docking engine exited with status %d", res.ExitCode).
			WithDetail(res.Stderr)
	}

	dlgPath := ws.Path(resultPrefix + ".dlg")
	report, err := os.ReadFile(dlgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.ArtifactMissing("engine exited zero but wrote no report").WithDetail(dlgPath)
		}
		return 0, errors.Wrap(err, errors.CodeInternal, "reading docking report").WithDetail(dlgPath)
	}

	score, err := parseDLG(string(report))
	if err != nil {
		return 0, err
	}

	b.logger.Debug("scored",
		logging.String("ligand", req.LigandPath),
		logging.Float64("score", score),
		logging.Int("nev", nev),
	)
	return score, nil
}
