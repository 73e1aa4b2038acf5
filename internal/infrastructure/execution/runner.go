// Package execution provides the single process-launching primitive used by
// every docking adapter and the structure converter.  Commands are always
// explicit argument vectors — nothing is ever passed through a shell — and
// stdout, stderr, and the exit status are captured in full so that adapters
// can classify failures and parse reports without re-running anything.
package execution

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/prometheus"
)

// Command describes one external process invocation.
type Command struct {
	// Path is the executable path or bare command name (resolved via PATH).
	Path string

	// Args is the argument vector, excluding the command itself.
	Args []string

	// Dir is the working directory for the process; empty means inherit.
	// The grid generator requires the parameter file's directory here.
	Dir string

	// Timeout bounds the process lifetime.  Zero means no timeout; scoring
	// runs are never time-bounded, only short discovery probes are.
	Timeout time.Duration
}

// Result captures everything an adapter needs from a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Ok reports whether the process exited with status zero.
func (r Result) Ok() bool { return r.ExitCode == 0 }

// waitDelay bounds how long Run keeps waiting after the context is done.
// Killing the immediate child does not reach grandchildren holding the
// inherited stdout/stderr pipes; once the delay elapses the pipes are
// severed and Run returns even if a stray process lingers.
const waitDelay = 3 * time.Second

// Runner executes external commands.  It is an interface so tests can
// substitute canned results without touching the filesystem or PATH.
type Runner interface {
	// Run blocks until the process exits.  A non-zero exit status is NOT an
	// error: the Result carries the exit code and captured streams and the
	// caller decides how to classify it.  Run returns a non-nil error only
	// when the process could not be started or was killed by a timeout or
	// context cancellation before completing.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// runner is the os/exec-backed Runner.
type runner struct {
	logger  logging.Logger
	metrics *prometheus.PipelineMetrics
}

// NewRunner constructs the production Runner.
func NewRunner(logger logging.Logger, metrics *prometheus.PipelineMetrics) Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NopPipelineMetrics()
	}
	return &runner{logger: logger.Named("exec"), metrics: metrics}
}

func (r *runner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	proc := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	proc.WaitDelay = waitDelay
	if cmd.Dir != "" {
		proc.Dir = cmd.Dir
	}

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	tool := filepath.Base(cmd.Path)
	r.logger.Debug("running external command",
		logging.String("tool", tool),
		logging.String("path", cmd.Path),
		logging.Int("argc", len(cmd.Args)),
		logging.String("dir", cmd.Dir),
	)

	start := time.Now()
	err := proc.Run()
	elapsed := time.Since(start)

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	r.metrics.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Timeout or cancellation.  The kill surfaces as a signal exit
			// and a lingering pipe as exec.ErrWaitDelay; both collapse to
			// the context error so callers never mistake an aborted run for
			// an engine verdict.
			res.ExitCode = -1
			r.metrics.ToolInvocationsTotal.WithLabelValues(tool, "error").Inc()
			r.logger.Debug("command aborted",
				logging.String("tool", tool),
				logging.Duration("elapsed", elapsed),
				logging.Err(ctxErr),
			)
			return res, ctxErr
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Process ran to completion with a non-zero status; report it
			// through the Result, not the error.
			res.ExitCode = exitErr.ExitCode()
			r.metrics.ToolInvocationsTotal.WithLabelValues(tool, "error").Inc()
			r.logger.Debug("command exited non-zero",
				logging.String("tool", tool),
				logging.Int("exit_code", res.ExitCode),
				logging.Duration("elapsed", elapsed),
			)
			return res, nil
		}

		// Start failure or a pipe left open past the wait delay.
		res.ExitCode = -1
		r.metrics.ToolInvocationsTotal.WithLabelValues(tool, "error").Inc()
		r.logger.Debug("command failed to run",
			logging.String("tool", tool),
			logging.Err(err),
		)
		return res, err
	}

	r.metrics.ToolInvocationsTotal.WithLabelValues(tool, "ok").Inc()
	r.logger.Debug("command completed",
		logging.String("tool", tool),
		logging.Duration("elapsed", elapsed),
	)
	return res, nil
}
