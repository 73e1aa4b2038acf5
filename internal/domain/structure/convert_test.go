package structure

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoredock/scoredock/internal/infrastructure/execution"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/toolchain"
	"github.com/scoredock/scoredock/pkg/errors"
)

// fakeConverter writes a shell script standing in for obabel.  It copies the
// input to the -O destination and appends one line to a call log so tests can
// count invocations.
func fakeConverter(t *testing.T, dir string, body string) (script, callLog string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out to /bin/sh")
	}
	callLog = filepath.Join(dir, "calls.log")
	script = filepath.Join(dir, "obabel")
	if body == "" {
		body = `echo "$@" >> ` + callLog + `
in="$1"; shift
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-O" ]; then out="$2"; shift; fi
  shift
done
cp "$in" "$out"
`
	}
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"+body), 0o755))
	return script, callLog
}

func newConverter(t *testing.T, script string) *Converter {
	t.Helper()
	runner := execution.NewRunner(logging.NewNopLogger(), nil)
	res := toolchain.StaticResolver{ConverterTool: script}
	return NewConverter(res, runner, logging.NewNopLogger(), nil)
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(data), "\n")
}

func TestConvert_ProducesSiblingArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "prot.pdb")
	require.NoError(t, os.WriteFile(src, []byte("ATOM\n"), 0o644))
	script, _ := fakeConverter(t, t.TempDir(), "")

	c := newConverter(t, script)
	dst, err := c.PrepareReceptor(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "prot.pdbqt"), dst)
	assert.FileExists(t, dst)
}

func TestConvert_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "lig.sdf")
	require.NoError(t, os.WriteFile(src, []byte("mol\n"), 0o644))
	script, callLog := fakeConverter(t, t.TempDir(), "")

	c := newConverter(t, script)

	_, err := c.PrepareLigand(context.Background(), src)
	require.NoError(t, err)
	_, err = c.PrepareLigand(context.Background(), src)
	require.NoError(t, err)

	// Second call reuses the artifact; the converter ran exactly once.
	assert.Equal(t, 1, countLines(t, callLog))
}

func TestConvert_MissingSource(t *testing.T) {
	t.Parallel()

	script, _ := fakeConverter(t, t.TempDir(), "")
	c := newConverter(t, script)

	_, err := c.PrepareLigand(context.Background(), filepath.Join(t.TempDir(), "ghost.sdf"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputMissing))
}

func TestConvert_ToolFailureSurfacesStderr(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "prot.pdb")
	require.NoError(t, os.WriteFile(src, []byte("ATOM\n"), 0o644))
	script, _ := fakeConverter(t, t.TempDir(), `echo "0 molecules converted" >&2; exit 1`+"\n")

	c := newConverter(t, script)
	_, err := c.PrepareReceptor(context.Background(), src)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeToolFailure))
	assert.Contains(t, err.Error(), "0 molecules converted")
}

func TestConvert_ZeroExitWithoutArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "prot.pdb")
	require.NoError(t, os.WriteFile(src, []byte("ATOM\n"), 0o644))
	script, _ := fakeConverter(t, t.TempDir(), "exit 0\n")

	c := newConverter(t, script)
	_, err := c.PrepareReceptor(context.Background(), src)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeArtifactMissing))
}

func TestConvert_ResolverFailurePropagates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "prot.pdb")
	require.NoError(t, os.WriteFile(src, []byte("ATOM\n"), 0o644))

	c := NewConverter(toolchain.StaticResolver{}, execution.NewRunner(logging.NewNopLogger(), nil), logging.NewNopLogger(), nil)
	_, err := c.PrepareReceptor(context.Background(), src)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeToolMissing))
}

func TestConvert_ConcurrentSameDestination(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "shared.pdb")
	require.NoError(t, os.WriteFile(src, []byte("ATOM\n"), 0o644))
	script, callLog := fakeConverter(t, t.TempDir(), "")

	c := newConverter(t, script)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.PrepareReceptor(context.Background(), src)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The per-destination lock serializes workers; only the first converts.
	assert.Equal(t, 1, countLines(t, callLog))
}
