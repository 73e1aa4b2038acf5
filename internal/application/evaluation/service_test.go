package evaluation

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoredock/scoredock/internal/domain/docking"
	"github.com/scoredock/scoredock/pkg/errors"
)

// scriptedScorer returns a canned result per ligand path and tracks worker
// concurrency.
type scriptedScorer struct {
	results map[string]docking.Result

	mu        sync.Mutex
	inFlight  int32
	maxSeen   int32
	callCount int
}

func (s *scriptedScorer) Score(_ context.Context, req docking.Request) docking.Result {
	cur := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)

	s.mu.Lock()
	if cur > s.maxSeen {
		s.maxSeen = cur
	}
	s.callCount++
	s.mu.Unlock()

	if res, ok := s.results[req.LigandPath]; ok {
		return res
	}
	return docking.NoScore(req.Backend, errors.InputMissing("unexpected ligand"))
}

func scored(backend string, score float64) docking.Result {
	return docking.Result{Backend: backend, Scored: true, Score: score, Outcome: errors.CodeOK}
}

func testEntries(ligands ...string) []Entry {
	entries := make([]Entry, len(ligands))
	for i, l := range ligands {
		entries[i] = Entry{LigandPath: l, ProteinPath: "t.pdb", Backend: docking.BackendQVina}
	}
	return entries
}

func TestRun_AllScored(t *testing.T) {
	t.Parallel()

	scorer := &scriptedScorer{results: map[string]docking.Result{
		"a.sdf": scored(docking.BackendQVina, -7.5),
		"b.sdf": scored(docking.BackendQVina, -6.1),
	}}
	svc := NewService(scorer, 2, nil, nil)

	report := svc.Run(context.Background(), testEntries("a.sdf", "b.sdf"))

	require.Len(t, report.Records, 2)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Scored())

	// Records stay in manifest order regardless of completion order.
	assert.Equal(t, "a.sdf", report.Records[0].Ligand)
	assert.Equal(t, -7.5, report.Records[0].Score)
	assert.Equal(t, "b.sdf", report.Records[1].Ligand)
}

func TestRun_FailuresDoNotAbortBatch(t *testing.T) {
	t.Parallel()

	scorer := &scriptedScorer{results: map[string]docking.Result{
		"good.sdf": scored(docking.BackendQVina, -8.0),
		"bad.sdf":  docking.NoScore(docking.BackendQVina, errors.ToolFailure("engine crashed")),
	}}
	svc := NewService(scorer, 1, nil, nil)

	report := svc.Run(context.Background(), testEntries("bad.sdf", "good.sdf"))

	require.Len(t, report.Records, 2)
	assert.False(t, report.Records[0].Scored)
	assert.Equal(t, errors.CodeToolFailure.String(), report.Records[0].Outcome)
	assert.True(t, report.Records[1].Scored)
	assert.Equal(t, 1, report.Scored())
}

func TestRun_BoundedWorkers(t *testing.T) {
	t.Parallel()

	results := make(map[string]docking.Result)
	var ligands []string
	for _, l := range []string{"a", "b", "c", "d", "e", "f"} {
		name := l + ".sdf"
		results[name] = scored(docking.BackendQVina, -5)
		ligands = append(ligands, name)
	}
	scorer := &scriptedScorer{results: results}
	svc := NewService(scorer, 2, nil, nil)

	report := svc.Run(context.Background(), testEntries(ligands...))

	assert.Equal(t, 6, report.Scored())
	assert.Equal(t, 6, scorer.callCount)
	assert.LessOrEqual(t, scorer.maxSeen, int32(2))
}

func TestRun_CancelMarksRemaining(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scorer := &scriptedScorer{results: map[string]docking.Result{}}
	svc := NewService(scorer, 1, nil, nil)

	// With a cancelled context the dispatcher may still hand entries to the
	// idle worker; whatever is left undispatched is marked, nothing is lost.
	report := svc.Run(ctx, testEntries("a.sdf", "b.sdf", "c.sdf"))

	require.Len(t, report.Records, 3)
	for _, rec := range report.Records {
		assert.False(t, rec.Scored)
		assert.NotEmpty(t, rec.Ligand)
	}
}

func TestReport_WriteCSV(t *testing.T) {
	t.Parallel()

	report := &Report{
		RunID: "run-1",
		Records: []Record{
			{Ligand: "a.sdf", Protein: "t.pdb", Backend: "qvina", Scored: true, Score: -7.52, Outcome: "OK"},
			{Ligand: "b.sdf", Protein: "t.pdb", Backend: "qvina", Outcome: "DOCK_003"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ligand,protein,backend,scored,score,outcome,elapsed_seconds", lines[0])
	assert.Contains(t, lines[1], "-7.52")
	// Unscored rows leave the score column empty.
	assert.Contains(t, lines[2], "false,,DOCK_003")
}

func TestReport_Summarize(t *testing.T) {
	t.Parallel()

	report := &Report{
		RunID: "run-1",
		Records: []Record{
			{Ligand: "a.sdf", Scored: true, Score: -7.52, Outcome: "OK"},
			{Ligand: "b.sdf", Scored: true, Score: -9.10, Outcome: "OK"},
			{Ligand: "c.sdf", Outcome: "DOCK_001"},
		},
	}

	s := report.Summarize()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Scored)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 2, s.Outcomes["OK"])
	assert.Equal(t, 1, s.Outcomes["DOCK_001"])
	require.NotNil(t, s.BestScore)
	assert.Equal(t, -9.10, *s.BestScore)
	assert.Equal(t, "b.sdf", s.BestLigand)
}

func TestReport_WriteSummaryJSON(t *testing.T) {
	t.Parallel()

	report := &Report{
		RunID: "run-1",
		Records: []Record{
			{Ligand: "a.sdf", Scored: true, Score: -7.52, Outcome: "OK"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteSummary(&buf))
	assert.Contains(t, buf.String(), `"run_id": "run-1"`)
	assert.Contains(t, buf.String(), `"best_score": -7.52`)
}
