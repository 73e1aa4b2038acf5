package docking

import (
	"context"
	"strconv"

	"github.com/scoredock/scoredock/internal/domain/structure"
	"github.com/scoredock/scoredock/internal/infrastructure/execution"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/toolchain"
	"github.com/scoredock/scoredock/pkg/errors"
)

// QVinaTool is the logical toolchain name of the one-shot docking engine.
const QVinaTool = "qvina"

// qvinaBackend adapts the QuickVina-style one-shot engine: both structures
// are converted to PDBQT, the engine runs once over the derived box, and the
// score is the rank-1 row of the stdout result table.
type qvinaBackend struct {
	converter *structure.Converter
	runner    execution.Runner
	resolver  toolchain.Resolver
	logger    logging.Logger
	defaults  Params
}

// NewQVinaBackend constructs the one-shot engine adapter.
func NewQVinaBackend(converter *structure.Converter, runner execution.Runner, resolver toolchain.Resolver, logger logging.Logger, defaults Params) Backend {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &qvinaBackend{
		converter: converter,
		runner:    runner,
		resolver:  resolver,
		logger:    logger.Named("qvina"),
		defaults:  defaults,
	}
}

func (b *qvinaBackend) Name() string { return BackendQVina }

func (b *qvinaBackend) Score(ctx context.Context, req Request) (float64, error) {
	// The box center comes from the ligand's source coordinates, before
	// conversion touches protonation.
	center, err := boxCenter(req.LigandPath)
	if err != nil {
		return 0, err
	}

	receptor, err := b.converter.PrepareReceptor(ctx, req.ProteinPath)
	if err != nil {
		return 0, err
	}
	ligand, err := b.converter.PrepareLigand(ctx, req.LigandPath)
	if err != nil {
		return 0, err
	}

	engine, err := b.resolver.Resolve(ctx, QVinaTool)
	if err != nil {
		return 0, err
	}

	p := req.Params.merged(b.defaults)
	args := []string{
		"--receptor", receptor,
		"--ligand", ligand,
		"--center_x", coord(center.X),
		"--center_y", coord(center.Y),
		"--center_z", coord(center.Z),
		"--size_x", num(p.BoxSize),
		"--size_y", num(p.BoxSize),
		"--size_z", num(p.BoxSize),
		"--exhaustiveness", strconv.Itoa(p.Exhaustiveness),
	}

	res, err := b.runner.Run(ctx, execution.Command{Path: engine, Args: args})
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeToolFailure, "docking engine did not run")
	}
	if !res.Ok() {
		return 0, errors.Newf(errors.CodeToolFailure,
			"docking engine exited with status %d", res.ExitCode).
			WithDetail(res.Stderr)
	}

	score, err := parseResultTable(res.Stdout)
	if err != nil {
		return 0, err
	}

	b.logger.Debug("scored",
		logging.String("ligand", req.LigandPath),
		logging.Float64("score", score),
	)
	return score, nil
}
