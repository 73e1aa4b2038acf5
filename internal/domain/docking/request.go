// Package docking implements the docking-score evaluation pipeline: the
// scoring façade, the backend adapters for the supported engines, the grid
// precomputation for the GPU engine, and the report parsers.  One Request is
// one molecule-vs-protein scoring attempt; batches are driven by the
// application layer, one request at a time per worker.
package docking

import (
	"time"

	"github.com/scoredock/scoredock/pkg/errors"
)

// Backend identifiers accepted on a Request.
const (
	BackendQVina       = "qvina"
	BackendGnina       = "gnina"
	BackendAutoDockGPU = "autodock-gpu"
)

// Params carries the backend tuning knobs of a request.  Zero values mean
// "use the backend's configured default".
type Params struct {
	// BoxSize is the docking search cube edge length in Ångström.
	BoxSize float64

	// Exhaustiveness is the abstract search-effort knob.  The grid backend
	// maps it onto its native energy-evaluation count.
	Exhaustiveness int

	// NumRuns is the number of independent docking runs (grid backend only).
	NumRuns int

	// CNNScoring selects the CNN scoring mode of the rescoring engine
	// ("none", "rescore", "refinement", "all").
	CNNScoring string
}

// merged returns p with zero fields replaced from defaults.
func (p Params) merged(defaults Params) Params {
	if p.BoxSize <= 0 {
		p.BoxSize = defaults.BoxSize
	}
	if p.Exhaustiveness <= 0 {
		p.Exhaustiveness = defaults.Exhaustiveness
	}
	if p.NumRuns <= 0 {
		p.NumRuns = defaults.NumRuns
	}
	if p.CNNScoring == "" {
		p.CNNScoring = defaults.CNNScoring
	}
	return p
}

// Request binds one ligand to one protein target for scoring by one backend.
// Requests are immutable once constructed; the docking-box center is never
// supplied — it is derived from the ligand's atom coordinates.
type Request struct {
	// ProteinPath locates the receptor structure (PDB).  If absent on disk
	// it is re-rooted beneath the configured data root before giving up.
	ProteinPath string

	// LigandPath locates the ligand structure with 3-D coordinates
	// (SDF or PDB).
	LigandPath string

	// Backend selects the engine adapter.
	Backend string

	// Params are per-request tuning overrides.
	Params Params
}

// Result is the outcome of one scoring attempt.  It is never stale or
// partial: either Scored is true and Score holds the parsed best binding
// energy from one self-consistent engine run, or Scored is false and Outcome
// carries the failure classification.
type Result struct {
	// Backend echoes the engine that handled the request.
	Backend string

	// Scored reports whether a definite score was produced.
	Scored bool

	// Score is the best (lowest) binding energy in kcal/mol.  Valid only
	// when Scored is true.
	Score float64

	// Outcome is errors.CodeOK when scored, otherwise the failure code.
	Outcome errors.ErrorCode

	// Elapsed is the wall time of the whole attempt.
	Elapsed time.Duration
}

// NoScore constructs an unscored Result for the given backend and cause.
func NoScore(backend string, err error) Result {
	return Result{
		Backend: backend,
		Scored:  false,
		Outcome: errors.GetCode(err),
	}
}
