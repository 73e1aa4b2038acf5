package docking

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/prometheus"
	"github.com/scoredock/scoredock/pkg/errors"
)

// Workspace is an ephemeral directory scoped to a single scoring attempt.
// Backends that need intermediate files (grid maps, prepared copies) create
// one and defer Remove; the directory is private to the attempt, so
// concurrent requests can never collide on intermediate artifacts.
type Workspace struct {
	// Dir is the absolute workspace directory path.
	Dir string

	backend string
	logger  logging.Logger
	metrics *prometheus.PipelineMetrics
}

// NewWorkspace creates a uniquely-named directory under the system temp dir.
func NewWorkspace(backend string, logger logging.Logger, metrics *prometheus.PipelineMetrics) (*Workspace, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NopPipelineMetrics()
	}

	dir := filepath.Join(os.TempDir(), "scoredock-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "creating workspace directory").WithDetail(dir)
	}

	metrics.WorkspacesCreatedTotal.WithLabelValues(backend).Inc()
	return &Workspace{
		Dir:     dir,
		backend: backend,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Path returns the workspace-relative location for name.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// ImportFile copies an external file into the workspace under the same base
// name and returns the new path.  The grid generator requires the receptor to
// sit next to the parameter file.
func (w *Workspace) ImportFile(src string) (string, error) {
	dst := w.Path(filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.InputMissing("workspace import source not found").WithDetail(src)
		}
		return "", errors.Wrap(err, errors.CodeInternal, "opening workspace import source").WithDetail(src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "creating workspace file").WithDetail(dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "copying into workspace").WithDetail(dst)
	}
	return dst, nil
}

// Remove deletes the workspace and everything in it.  It is safe to call on
// every exit path; removal failures are logged, never returned, since the
// scoring outcome is already decided by the time cleanup runs.
func (w *Workspace) Remove() {
	if err := os.RemoveAll(w.Dir); err != nil {
		w.logger.Warn("failed to remove workspace",
			logging.String("dir", w.Dir),
			logging.Err(err),
		)
		return
	}
	w.metrics.WorkspacesRemovedTotal.WithLabelValues(w.backend).Inc()
}
