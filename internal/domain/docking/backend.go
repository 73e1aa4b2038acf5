package docking

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/scoredock/scoredock/internal/domain/structure"
	"github.com/scoredock/scoredock/pkg/errors"
)

// Backend is one engine adapter.  Score drives the engine's full protocol —
// preparation, execution, report parsing — and returns the best binding
// energy in kcal/mol.  Errors carry a scoring-taxonomy code; the façade is
// responsible for degrading them to an unscored Result.
type Backend interface {
	// Name returns the backend identifier used on requests.
	Name() string

	// Score runs one complete scoring attempt.  Blocking; the external
	// engine run is never time-bounded.
	Score(ctx context.Context, req Request) (float64, error)
}

// Registry maps backend identifiers to adapters.
type Registry map[string]Backend

// NewRegistry builds a Registry from the given backends, keyed by Name.
func NewRegistry(backends ...Backend) Registry {
	r := make(Registry, len(backends))
	for _, b := range backends {
		r[b.Name()] = b
	}
	return r
}

// Get returns the backend for id.
func (r Registry) Get(id string) (Backend, error) {
	b, ok := r[id]
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidParam, "unknown backend %q", id)
	}
	return b, nil
}

// Names returns the registered backend identifiers, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// boxCenter derives the docking-box center from the ligand's current pose:
// the mean of its atom coordinates.
func boxCenter(ligandPath string) (structure.Point, error) {
	atoms, err := structure.ReadCoordinates(ligandPath)
	if err != nil {
		return structure.Point{}, err
	}
	return structure.Centroid(atoms)
}

// coord formats a box coordinate for an engine command line.
func coord(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// num formats a box size or other tuning float without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
