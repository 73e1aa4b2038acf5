package docking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoredock/scoredock/pkg/errors"
)

const vinaStdout = `#################################################################
# If you used Quick Vina 2 in your work, please cite:           #
#################################################################

Reading input ... done.
Performing search ... done.

mode |   affinity | dist from best mode
     | (kcal/mol) | rmsd l.b.| rmsd u.b.
-----+------------+----------+----------
   1       -7.52      0.000      0.000
   2       -7.10      1.832      2.944
Writing output ... done.
`

func TestParseResultTable(t *testing.T) {
	t.Parallel()

	score, err := parseResultTable(vinaStdout)
	require.NoError(t, err)
	assert.Equal(t, -7.52, score)
}

func TestParseResultTable_NoTable(t *testing.T) {
	t.Parallel()

	_, err := parseResultTable("Reading input ... done.\n")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParseFailure))
}

func TestParseResultTable_SeparatorWithoutRow(t *testing.T) {
	t.Parallel()

	_, err := parseResultTable("-----+------------+----------\n")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParseFailure))
}

func TestParseResultTable_FirstRowNotRankOne(t *testing.T) {
	t.Parallel()

	out := "-----+------------+----------\n   2       -7.10      1.832      2.944\n"
	_, err := parseResultTable(out)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParseFailure))
}

func TestParseAffinityLine(t *testing.T) {
	t.Parallel()

	out := `Using random seed: 42
Affinity: -5.72376  0.00000 (kcal/mol)
CNNscore: 0.89
`
	score, err := parseAffinityLine(out)
	require.NoError(t, err)
	assert.Equal(t, -5.72376, score)
}

func TestParseAffinityLine_Missing(t *testing.T) {
	t.Parallel()

	_, err := parseAffinityLine("CNNscore: 0.89\n")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParseFailure))
}

func TestParseDLG_RankingLine(t *testing.T) {
	t.Parallel()

	report := `Run:   1 / 10
RANKING    2      -6.90      0.00      0.00
RANKING    1      -7.52      0.00      0.00
`
	score, err := parseDLG(report)
	require.NoError(t, err)
	assert.Equal(t, -7.52, score)
}

func TestParseDLG_FreeEnergyLine(t *testing.T) {
	t.Parallel()

	report := `DOCKED: USER
    Estimated Free Energy of Binding    =   -6.10 kcal/mol  [=(1)+(2)+(3)-(4)]
`
	score, err := parseDLG(report)
	require.NoError(t, err)
	assert.Equal(t, -6.10, score)
}

func TestParseDLG_LastMatchWins(t *testing.T) {
	t.Parallel()

	// Per-run free-energy sections come first; the final clustering RANKING
	// table is appended last and is the authoritative value.
	report := `    Estimated Free Energy of Binding    =   -5.80 kcal/mol
    Estimated Free Energy of Binding    =   -6.10 kcal/mol
RANKING    1      -7.52      0.00      0.00
`
	score, err := parseDLG(report)
	require.NoError(t, err)
	assert.Equal(t, -7.52, score)
}

func TestParseDLG_Empty(t *testing.T) {
	t.Parallel()

	_, err := parseDLG("AutoDock-GPU version: 1.5.3\n")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParseFailure))
}

func TestSanitizeStderr(t *testing.T) {
	t.Parallel()

	in := `==============================
*** Open Babel Warning  in ReadMolecule
  WARNING: Problems reading a PDB file
==============================
CUDA error: out of memory
THIS CONECT RECORD WILL BE IGNORED
`
	out := sanitizeStderr(in)
	assert.Contains(t, out, "CUDA error: out of memory")
	assert.NotContains(t, out, "Open Babel Warning")
	assert.NotContains(t, out, "CONECT RECORD")
}

func TestSanitizeStderr_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", sanitizeStderr(""))
}
