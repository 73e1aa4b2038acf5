package docking

import (
	"context"
	"strconv"

	"github.com/scoredock/scoredock/internal/infrastructure/execution"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/toolchain"
	"github.com/scoredock/scoredock/pkg/errors"
)

// GninaTool is the logical toolchain name of the CNN-rescoring engine.
const GninaTool = "gnina"

// gninaBackend adapts the CNN-rescoring engine in minimize mode: the ligand
// is scored in its current pose rather than redocked, so no geometry search
// and no structure conversion happen here — the engine reads the protein PDB
// and ligand SDF directly.
type gninaBackend struct {
	runner   execution.Runner
	resolver toolchain.Resolver
	logger   logging.Logger
	defaults Params
}

// NewGninaBackend constructs the CNN-rescoring adapter.
func NewGninaBackend(runner execution.Runner, resolver toolchain.Resolver, logger logging.Logger, defaults Params) Backend {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &gninaBackend{
		runner:   runner,
		resolver: resolver,
		logger:   logger.Named("gnina"),
		defaults: defaults,
	}
}

func (b *gninaBackend) Name() string { return BackendGnina }

func (b *gninaBackend) Score(ctx context.Context, req Request) (float64, error) {
	center, err := boxCenter(req.LigandPath)
	if err != nil {
		return 0, err
	}

	engine, err := b.resolver.Resolve(ctx, GninaTool)
	if err != nil {
		return 0, err
	}

	p := req.Params.merged(b.defaults)
	args := []string{
		"-r", req.ProteinPath,
		"-l", req.LigandPath,
		"--center_x", coord(center.X),
		"--center_y", coord(center.Y),
		"--center_z", coord(center.Z),
		"--size_x", num(p.BoxSize),
		"--size_y", num(p.BoxSize),
		"--size_z", num(p.BoxSize),
		"--exhaustiveness", strconv.Itoa(p.Exhaustiveness),
		"--cnn_scoring", p.CNNScoring,
		"--minimize",
	}

	res, err := b.runner.Run(ctx, execution.Command{Path: engine, Args: args})
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeToolFailure, "rescoring engine did not run")
	}
	if !res.Ok() {
		return 0, errors.Newf(errors.CodeToolFailure,
			"rescoring engine exited with status %d", res.ExitCode).
			WithDetail(res.Stderr)
	}

	// Minimize mode usually prints the affinity line, but some builds emit
	// the full result table; accept the table first, then the line.
	if score, err := parseResultTable(res.Stdout); err == nil {
		b.logger.Debug("scored from table", logging.Float64("score", score))
		return score, nil
	}
	if score, err := parseAffinityLine(res.Stdout); err == nil {
		b.logger.Debug("scored from affinity line", logging.Float64("score", score))
		return score, nil
	}

	// Neither pattern matched.  Attach stderr stripped of the conversion
	// sub-tool's benign warning noise so the diagnostic points at the real
	// problem.
	return 0, errors.ParseFailure("no result table or affinity line in engine output").
		WithDetail(sanitizeStderr(res.Stderr))
}
