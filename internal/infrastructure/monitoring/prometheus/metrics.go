package prometheus

// PipelineMetrics holds every metric emitted by the scoring pipeline.
// A single instance is constructed at startup and threaded through the
// façade, converter, and batch service.
type PipelineMetrics struct {
	// Scoring
	ScoreAttemptsTotal CounterVec   // backend, outcome (scored | error code)
	ScoreDuration      HistogramVec // backend
	ScoreValue         HistogramVec // backend — distribution of parsed energies

	// Structure conversion
	ConversionsTotal   CounterVec   // format, status (converted | cached | failed)
	ConversionDuration HistogramVec // format

	// External tools
	ToolInvocationsTotal CounterVec   // tool, status (ok | error)
	ToolDuration         HistogramVec // tool
	ToolResolveFailures  CounterVec   // tool

	// Workspaces
	WorkspacesCreatedTotal CounterVec // backend
	WorkspacesRemovedTotal CounterVec // backend

	// Batch evaluation
	BatchEntriesTotal  CounterVec // no labels; accumulates across runs
	BatchActiveWorkers GaugeVec   // no labels
}

// Histogram buckets tuned to the pipeline: docking runs take seconds to many
// minutes, conversions fractions of a second, binding energies land in the
// −15..0 kcal/mol range.
var (
	DefaultScoreDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}
	DefaultToolDurationBuckets  = []float64{.05, .1, .25, .5, 1, 5, 10, 30, 60, 300}
	DefaultEnergyBuckets        = []float64{-15, -12, -10, -9, -8, -7, -6, -5, -4, -3, -2, -1, 0}
)

// NewPipelineMetrics registers all pipeline metrics with the collector.
func NewPipelineMetrics(collector MetricsCollector) *PipelineMetrics {
	m := &PipelineMetrics{}

	m.ScoreAttemptsTotal = collector.RegisterCounter("score_attempts_total", "Scoring attempts by backend and outcome", "backend", "outcome")
	m.ScoreDuration = collector.RegisterHistogram("score_duration_seconds", "End-to-end scoring attempt duration", DefaultScoreDurationBuckets, "backend")
	m.ScoreValue = collector.RegisterHistogram("score_value_kcal_mol", "Parsed binding energy distribution", DefaultEnergyBuckets, "backend")

	m.ConversionsTotal = collector.RegisterCounter("structure_conversions_total", "Structure conversions by target format and status", "format", "status")
	m.ConversionDuration = collector.RegisterHistogram("structure_conversion_duration_seconds", "External conversion duration", DefaultToolDurationBuckets, "format")

	m.ToolInvocationsTotal = collector.RegisterCounter("tool_invocations_total", "External tool invocations", "tool", "status")
	m.ToolDuration = collector.RegisterHistogram("tool_duration_seconds", "External tool run duration", DefaultToolDurationBuckets, "tool")
	m.ToolResolveFailures = collector.RegisterCounter("tool_resolve_failures_total", "Executable lookups where no candidate resolved", "tool")

	m.WorkspacesCreatedTotal = collector.RegisterCounter("workspaces_created_total", "Ephemeral workspaces created", "backend")
	m.WorkspacesRemovedTotal = collector.RegisterCounter("workspaces_removed_total", "Ephemeral workspaces removed", "backend")

	m.BatchEntriesTotal = collector.RegisterCounter("batch_entries_total", "Manifest entries accepted for batch scoring")
	m.BatchActiveWorkers = collector.RegisterGauge("batch_active_workers", "Workers currently scoring")

	return m
}

// NopPipelineMetrics returns a PipelineMetrics whose vecs all discard writes.
// Components accept it when metrics are disabled or in tests.
func NopPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		ScoreAttemptsTotal:     noopCounterVec{},
		ScoreDuration:          noopHistogramVec{},
		ScoreValue:             noopHistogramVec{},
		ConversionsTotal:       noopCounterVec{},
		ConversionDuration:     noopHistogramVec{},
		ToolInvocationsTotal:   noopCounterVec{},
		ToolDuration:           noopHistogramVec{},
		ToolResolveFailures:    noopCounterVec{},
		WorkspacesCreatedTotal: noopCounterVec{},
		WorkspacesRemovedTotal: noopCounterVec{},
		BatchEntriesTotal:      noopCounterVec{},
		BatchActiveWorkers:     noopGaugeVec{},
	}
}
