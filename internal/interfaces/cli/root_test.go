package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfigFile writes a minimal config that keeps test output quiet and
// metrics off.
func testConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoredock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o644))
	return path
}

// runCommand executes the root command with args and returns its combined
// output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["score"])
	assert.True(t, names["batch"])
	assert.True(t, names["backends"])
}

func TestRootCommand_Help(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "scoredock")
	assert.Contains(t, out, "score")
}

func TestBackendsCommand_ListsEngines(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, "-c", testConfigFile(t), "backends")
	require.NoError(t, err)
	assert.Contains(t, out, "qvina")
	assert.Contains(t, out, "gnina")
	assert.Contains(t, out, "autodock-gpu")
}

func TestRootCommand_BadConfigPath(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "backends")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config initialization failed")
}

func TestRootCommand_InvalidFlagOverride(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "-c", testConfigFile(t), "--log-level", "noisy", "backends")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}
