// Package toolchain locates the external executables the pipeline drives:
// the structure converter, the docking engines, and the grid-field generator.
// Every tool is described by an ordered candidate list (absolute paths first,
// bare command names resolved via PATH last) plus an optional verification
// probe; the first candidate that resolves wins.  The Resolver is an
// interface so tests can substitute fake binaries without touching the real
// search path.
package toolchain

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/scoredock/scoredock/internal/infrastructure/execution"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/prometheus"
	"github.com/scoredock/scoredock/pkg/errors"
)

// defaultProbeTimeout bounds verification probe runs.  Probes are the only
// time-bounded invocations in the pipeline.
const defaultProbeTimeout = 2 * time.Second

// Probe describes how to verify that a resolved candidate is the real tool
// and not an unrelated binary that happens to share its name.
type Probe struct {
	// Flag is passed as the sole argument (e.g. "-h", "--help").
	Flag string

	// Expect is a substring that must appear in the probe's stdout or stderr
	// when the probe exits non-zero.  A zero exit alone also accepts the
	// candidate.  Empty Expect accepts only on zero exit.
	Expect string

	// Timeout overrides defaultProbeTimeout when positive.
	Timeout time.Duration
}

// Spec is the full search description for one logical tool name.
type Spec struct {
	// Candidates are tried in order.  Entries containing a path separator
	// are checked for existence on disk; bare names go through PATH lookup.
	Candidates []string

	// Probe, when non-nil, must accept the candidate before it is returned.
	Probe *Probe
}

// Resolver maps a logical tool name ("obabel", "autogrid4", "qvina",
// "gnina", "autodock-gpu") to a runnable executable path.
type Resolver interface {
	Resolve(ctx context.Context, tool string) (string, error)
}

// resolver is the production Resolver with per-tool memoization: once a
// candidate has been accepted it is reused for the life of the process.
type resolver struct {
	specs   map[string]Spec
	runner  execution.Runner
	logger  logging.Logger
	metrics *prometheus.PipelineMetrics

	mu       sync.Mutex
	resolved map[string]string
}

// NewResolver constructs a Resolver over the given tool specs.
func NewResolver(specs map[string]Spec, runner execution.Runner, logger logging.Logger, metrics *prometheus.PipelineMetrics) Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NopPipelineMetrics()
	}
	return &resolver{
		specs:    specs,
		runner:   runner,
		logger:   logger.Named("toolchain"),
		metrics:  metrics,
		resolved: make(map[string]string),
	}
}

func (r *resolver) Resolve(ctx context.Context, tool string) (string, error) {
	r.mu.Lock()
	if path, ok := r.resolved[tool]; ok {
		r.mu.Unlock()
		return path, nil
	}
	r.mu.Unlock()

	spec, ok := r.specs[tool]
	if !ok || len(spec.Candidates) == 0 {
		r.metrics.ToolResolveFailures.WithLabelValues(tool).Inc()
		return "", errors.Newf(errors.CodeToolMissing, "no candidates configured for tool %q", tool)
	}

	for _, candidate := range spec.Candidates {
		path, found := locate(candidate)
		if !found {
			continue
		}
		if spec.Probe != nil && !r.probe(ctx, tool, path, *spec.Probe) {
			continue
		}

		r.mu.Lock()
		r.resolved[tool] = path
		r.mu.Unlock()

		r.logger.Debug("resolved tool",
			logging.String("tool", tool),
			logging.String("path", path),
		)
		return path, nil
	}

	r.metrics.ToolResolveFailures.WithLabelValues(tool).Inc()
	return "", errors.Newf(errors.CodeToolMissing,
		"tool %q not found; tried %s", tool, strings.Join(spec.Candidates, ", "))
}

// locate checks a single candidate.  Path-like candidates must exist as
// regular files; bare names are resolved through PATH.
func locate(candidate string) (string, bool) {
	if strings.ContainsRune(candidate, os.PathSeparator) {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			return "", false
		}
		return candidate, true
	}
	path, err := exec.LookPath(candidate)
	if err != nil {
		return "", false
	}
	return path, true
}

// probe runs the candidate with the probe flag under a short timeout and
// accepts it on a zero exit or when the expected marker appears in either
// output stream.
func (r *resolver) probe(ctx context.Context, tool, path string, p Probe) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	res, err := r.runner.Run(ctx, execution.Command{
		Path:    path,
		Args:    []string{p.Flag},
		Timeout: timeout,
	})
	if err != nil {
		r.logger.Debug("probe did not run",
			logging.String("tool", tool),
			logging.String("path", path),
			logging.Err(err),
		)
		return false
	}
	if res.Ok() {
		return true
	}
	if p.Expect != "" &&
		(strings.Contains(res.Stdout, p.Expect) || strings.Contains(res.Stderr, p.Expect)) {
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Static resolver for tests
// ─────────────────────────────────────────────────────────────────────────────

// StaticResolver resolves from a fixed name→path map and never probes.
type StaticResolver map[string]string

// Resolve implements Resolver.
func (s StaticResolver) Resolve(_ context.Context, tool string) (string, error) {
	if path, ok := s[tool]; ok {
		return path, nil
	}
	return "", errors.Newf(errors.CodeToolMissing, "tool %q not in static map", tool)
}
