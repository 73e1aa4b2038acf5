package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoredock/scoredock/internal/domain/docking"
	"github.com/scoredock/scoredock/pkg/errors"
)

func captureCmd() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	return cmd, buf
}

func TestPrintResult_Text(t *testing.T) {
	t.Parallel()

	cmd, buf := captureCmd()
	res := docking.Result{Backend: "qvina", Scored: true, Score: -7.52, Outcome: errors.CodeOK}
	require.NoError(t, printResult(cmd, "text", res))
	assert.Equal(t, "-7.52000\n", buf.String())
}

func TestPrintResult_TextUnscored(t *testing.T) {
	t.Parallel()

	cmd, buf := captureCmd()
	res := docking.NoScore("qvina", errors.ToolMissing("qvina not found"))
	require.NoError(t, printResult(cmd, "text", res))
	assert.Equal(t, "unscored (DOCK_002)\n", buf.String())
}

func TestPrintResult_JSON(t *testing.T) {
	t.Parallel()

	cmd, buf := captureCmd()
	res := docking.Result{Backend: "gnina", Scored: true, Score: -5.72376, Outcome: errors.CodeOK, Elapsed: 2 * time.Second}
	require.NoError(t, printResult(cmd, "json", res))
	assert.Contains(t, buf.String(), `"score": -5.72376`)
	assert.Contains(t, buf.String(), `"backend": "gnina"`)
	assert.Contains(t, buf.String(), `"elapsed_seconds": 2`)
}

func TestPrintResult_UnknownFormat(t *testing.T) {
	t.Parallel()

	cmd, _ := captureCmd()
	err := printResult(cmd, "yaml", docking.Result{})
	require.Error(t, err)
}

func TestScoreCommand_MissingInputExitsNonZero(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out, err := runCommand(t, "-c", testConfigFile(t), "score",
		"-l", filepath.Join(dir, "ghost.sdf"),
		"-p", filepath.Join(dir, "ghost.pdb"),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no score produced")
	// The result record still went to stdout before the failure exit.
	assert.Contains(t, out, "unscored (DOCK_001)")
}

func TestScoreCommand_RequiresLigandFlag(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "-c", testConfigFile(t), "score", "-p", "t.pdb")
	require.Error(t, err)
}

func TestScoreCommand_UnknownBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := runCommand(t, "-c", testConfigFile(t), "score",
		"-l", filepath.Join(dir, "ghost.sdf"),
		"-p", filepath.Join(dir, "ghost.pdb"),
		"-b", "smina",
	)
	require.Error(t, err)
}
