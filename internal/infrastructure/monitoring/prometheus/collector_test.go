package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "scoredock"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	t.Parallel()

	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestRegisterCounter_IncrementAndExpose(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	vec := c.RegisterCounter("score_attempts_total", "help", "backend", "outcome")
	vec.WithLabelValues("qvina", "scored").Inc()
	vec.WithLabelValues("qvina", "scored").Add(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "scoredock_score_attempts_total")
	assert.Contains(t, body, `backend="qvina"`)
}

func TestRegister_SameNameReturnsSameCollector(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	a := c.RegisterCounter("tool_invocations_total", "help", "tool", "status")
	b := c.RegisterCounter("tool_invocations_total", "help", "tool", "status")

	a.WithLabelValues("obabel", "ok").Inc()
	b.WithLabelValues("obabel", "ok").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "scoredock_tool_invocations_total")
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	vec := c.RegisterHistogram("score_duration_seconds", "help", nil, "backend")
	vec.WithLabelValues("gnina").Observe(12.5)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "scoredock_score_duration_seconds_bucket")
}

func TestRegisterGauge(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	vec := c.RegisterGauge("batch_active_workers", "help")
	g := vec.WithLabelValues()
	g.Set(4)
	g.Inc()
	g.Dec()
	g.Add(2)
	g.Sub(1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "scoredock_batch_active_workers")
}

func TestNewPipelineMetrics_AllVecsUsable(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	m := NewPipelineMetrics(c)
	m.ScoreAttemptsTotal.WithLabelValues("autodock-gpu", "DOCK_004").Inc()
	m.ScoreDuration.WithLabelValues("autodock-gpu").Observe(42)
	m.ScoreValue.WithLabelValues("autodock-gpu").Observe(-7.52)
	m.ConversionsTotal.WithLabelValues("pdbqt", "cached").Inc()
	m.ToolInvocationsTotal.WithLabelValues("autogrid4", "ok").Inc()
	m.WorkspacesCreatedTotal.WithLabelValues("autodock-gpu").Inc()
	m.WorkspacesRemovedTotal.WithLabelValues("autodock-gpu").Inc()
	m.BatchEntriesTotal.WithLabelValues().Add(3)
	m.BatchActiveWorkers.WithLabelValues().Set(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "scoredock_score_value_kcal_mol")
	assert.Contains(t, body, "scoredock_workspaces_removed_total")
	// The _total suffix is reserved for counters; the batch entry count is
	// one, the worker gauge is not.
	assert.Contains(t, body, "scoredock_batch_entries_total 3")
	assert.Contains(t, body, "scoredock_batch_active_workers 2")
	assert.NotContains(t, body, "batch_requests_total")
}

func TestNopPipelineMetrics_Discards(t *testing.T) {
	t.Parallel()

	m := NopPipelineMetrics()
	// Must not panic.
	m.ScoreAttemptsTotal.WithLabelValues("qvina", "scored").Inc()
	m.ScoreDuration.WithLabelValues("qvina").Observe(1)
	m.BatchEntriesTotal.WithLabelValues().Add(1)
	m.BatchActiveWorkers.WithLabelValues().Set(1)
}
