package structure

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/scoredock/scoredock/internal/infrastructure/execution"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/prometheus"
	"github.com/scoredock/scoredock/internal/infrastructure/toolchain"
	"github.com/scoredock/scoredock/pkg/errors"
)

// ConverterTool is the logical toolchain name of the structure converter.
const ConverterTool = "obabel"

// Preparation constants shared by receptor and ligand conversion: partial
// charges are assigned with the Gasteiger model and protonation states are
// fixed at physiological pH.
const (
	partialChargeModel = "gasteiger"
	protonationPH      = "7.4"
)

// Converter produces engine-format structure files from source structures by
// invoking the external converter.  Conversion is memoized by destination
// path: an artifact that already exists is trusted and reused without
// re-validation against the source (an accepted staleness trade-off — delete
// the artifact to force re-conversion).
//
// Concurrent conversions targeting the same destination are serialized on a
// per-path lock, so parallel batch workers sharing a receptor never race on
// a half-written file.
type Converter struct {
	resolver toolchain.Resolver
	runner   execution.Runner
	logger   logging.Logger
	metrics  *prometheus.PipelineMetrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewConverter constructs a Converter.
func NewConverter(resolver toolchain.Resolver, runner execution.Runner, logger logging.Logger, metrics *prometheus.PipelineMetrics) *Converter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NopPipelineMetrics()
	}
	return &Converter{
		resolver: resolver,
		runner:   runner,
		logger:   logger.Named("convert"),
		metrics:  metrics,
		locks:    make(map[string]*sync.Mutex),
	}
}

// SiblingPath returns the deterministic destination for converting src to the
// given extension: same directory, same stem, new extension.
func SiblingPath(src, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	stem := strings.TrimSuffix(filepath.Base(src), lastExt(src))
	return filepath.Join(filepath.Dir(src), stem+ext)
}

// PrepareReceptor converts a protein structure to PDBQT for docking.  The
// receptor flags additionally strip nonpolar hydrogens (-xr).
func (c *Converter) PrepareReceptor(ctx context.Context, src string) (string, error) {
	return c.Convert(ctx, src, ".pdbqt",
		"-xr",
		"--partialcharge", partialChargeModel,
		"-p", protonationPH,
	)
}

// PrepareLigand converts a ligand structure to PDBQT for docking.
func (c *Converter) PrepareLigand(ctx context.Context, src string) (string, error) {
	return c.Convert(ctx, src, ".pdbqt",
		"--partialcharge", partialChargeModel,
		"-p", protonationPH,
	)
}

// Convert produces the converted artifact at the sibling path for src and
// ext, invoking the external converter unless the artifact already exists.
// It returns the destination path.
func (c *Converter) Convert(ctx context.Context, src, ext string, flags ...string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", errors.InputMissing("conversion source not found").WithDetail(src)
		}
		return "", errors.Wrap(err, errors.CodeInternal, "stat conversion source").WithDetail(src)
	}

	dst := SiblingPath(src, ext)
	format := strings.TrimPrefix(ext, ".")

	unlock := c.lockPath(dst)
	defer unlock()

	if _, err := os.Stat(dst); err == nil {
		c.metrics.ConversionsTotal.WithLabelValues(format, "cached").Inc()
		c.logger.Debug("reusing existing artifact", logging.String("path", dst))
		return dst, nil
	}

	converter, err := c.resolver.Resolve(ctx, ConverterTool)
	if err != nil {
		return "", err
	}

	args := append([]string{src, "-O", dst}, flags...)

	start := time.Now()
	res, err := c.runner.Run(ctx, execution.Command{Path: converter, Args: args})
	c.metrics.ConversionDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ConversionsTotal.WithLabelValues(format, "failed").Inc()
		return "", errors.Wrap(err, errors.CodeToolFailure, "converter did not run").WithDetail(src)
	}
	if !res.Ok() {
		c.metrics.ConversionsTotal.WithLabelValues(format, "failed").Inc()
		return "", errors.Newf(errors.CodeToolFailure,
			"converter exited with status %d converting %s", res.ExitCode, filepath.Base(src)).
			WithDetail(res.Stderr)
	}
	if _, err := os.Stat(dst); err != nil {
		c.metrics.ConversionsTotal.WithLabelValues(format, "failed").Inc()
		return "", errors.ArtifactMissing("converter exited zero but wrote no output").WithDetail(dst)
	}

	c.metrics.ConversionsTotal.WithLabelValues(format, "converted").Inc()
	c.logger.Debug("converted structure",
		logging.String("src", src),
		logging.String("dst", dst),
	)
	return dst, nil
}

// lockPath acquires the per-destination mutex and returns its release func.
func (c *Converter) lockPath(path string) func() {
	c.mu.Lock()
	l, ok := c.locks[path]
	if !ok {
		l = &sync.Mutex{}
		c.locks[path] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
