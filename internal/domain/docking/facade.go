package docking

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/prometheus"
	"github.com/scoredock/scoredock/pkg/errors"
)

// DefaultPathMarker is the path segment at which input paths are re-rooted
// beneath the data root when they do not exist as given.
const DefaultPathMarker = "data"

// Scorer is the single entry point for scoring.  It normalizes input paths,
// dispatches to the selected backend, and absorbs every failure — including
// panics — into an unscored Result, so one bad molecule can never take down
// a batch.
type Scorer struct {
	registry   Registry
	dataRoot   string
	pathMarker string
	logger     logging.Logger
	metrics    *prometheus.PipelineMetrics
}

// NewScorer constructs the scoring façade.  dataRoot may be empty, in which
// case path re-rooting is disabled; pathMarker defaults to "data".
func NewScorer(registry Registry, dataRoot, pathMarker string, logger logging.Logger, metrics *prometheus.PipelineMetrics) *Scorer {
	if pathMarker == "" {
		pathMarker = DefaultPathMarker
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NopPipelineMetrics()
	}
	return &Scorer{
		registry:   registry,
		dataRoot:   dataRoot,
		pathMarker: pathMarker,
		logger:     logger.Named("scorer"),
		metrics:    metrics,
	}
}

// Backends returns the identifiers this scorer can dispatch to, sorted.
func (s *Scorer) Backends() []string {
	return s.registry.Names()
}

// Score runs one scoring attempt and always returns a Result; the error
// channel is deliberately absent.  An unresolvable input, an unknown
// backend, a failed engine run, or an unparsable report all yield an
// unscored Result carrying the failure code.
func (s *Scorer) Score(ctx context.Context, req Request) (result Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scoring attempt panicked",
				logging.String("backend", req.Backend),
				logging.String("ligand", req.LigandPath),
				logging.Any("panic", r),
			)
			result = NoScore(req.Backend, errors.Internal("scoring attempt panicked"))
		}
		result.Elapsed = time.Since(start)
		s.observe(req.Backend, result)
	}()

	req.ProteinPath = s.locate(req.ProteinPath)
	req.LigandPath = s.locate(req.LigandPath)

	if err := s.checkInputs(req); err != nil {
		s.report(req, err)
		return NoScore(req.Backend, err)
	}

	backend, err := s.registry.Get(req.Backend)
	if err != nil {
		s.report(req, err)
		return NoScore(req.Backend, err)
	}

	score, err := backend.Score(ctx, req)
	if err != nil {
		s.report(req, err)
		return NoScore(req.Backend, err)
	}

	s.logger.Info("scored",
		logging.String("backend", req.Backend),
		logging.String("ligand", req.LigandPath),
		logging.Float64("score", score),
	)
	return Result{
		Backend: req.Backend,
		Scored:  true,
		Score:   score,
		Outcome: errors.CodeOK,
	}
}

// locate returns path unchanged when the file exists.  Otherwise, if the
// path contains the marker segment and a data root is configured, the
// portion after the marker is re-rooted beneath the data root — the root
// stands in for everything up to and including the marker.  The rewritten
// path is returned whether or not it exists, existence being checked once
// by checkInputs.
func (s *Scorer) locate(path string) string {
	if path == "" || s.dataRoot == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}

	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, part := range parts {
		if part == s.pathMarker {
			rerooted := filepath.Join(append([]string{s.dataRoot}, parts[i+1:]...)...)
			s.logger.Debug("re-rooted input path",
				logging.String("from", path),
				logging.String("to", rerooted),
			)
			return rerooted
		}
	}
	return path
}

// checkInputs verifies that both structures exist before any engine work
// starts, so missing inputs fail fast with a precise code instead of a
// downstream tool error.
func (s *Scorer) checkInputs(req Request) error {
	if req.LigandPath == "" {
		return errors.InputMissing("no ligand path on request")
	}
	if _, err := os.Stat(req.LigandPath); err != nil {
		return errors.InputMissing("ligand structure not found").WithDetail(req.LigandPath)
	}
	if req.ProteinPath == "" {
		return errors.InputMissing("no protein path on request")
	}
	if _, err := os.Stat(req.ProteinPath); err != nil {
		return errors.InputMissing("protein structure not found").WithDetail(req.ProteinPath)
	}
	return nil
}

// report logs one failed attempt with its classification.
func (s *Scorer) report(req Request, err error) {
	s.logger.Warn("scoring attempt failed",
		logging.String("backend", req.Backend),
		logging.String("ligand", req.LigandPath),
		logging.String("protein", req.ProteinPath),
		logging.String("code", errors.GetCode(err).String()),
		logging.Err(err),
	)
}

// observe emits the attempt metrics.
func (s *Scorer) observe(backend string, result Result) {
	outcome := result.Outcome.String()
	if result.Scored {
		outcome = "scored"
		s.metrics.ScoreValue.WithLabelValues(backend).Observe(result.Score)
	}
	s.metrics.ScoreAttemptsTotal.WithLabelValues(backend, outcome).Inc()
	s.metrics.ScoreDuration.WithLabelValues(backend).Observe(result.Elapsed.Seconds())
}
