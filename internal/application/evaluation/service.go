package evaluation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scoredock/scoredock/internal/domain/docking"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/prometheus"
)

// Scorer is the slice of the docking façade the batch service needs.
type Scorer interface {
	Score(ctx context.Context, req docking.Request) docking.Result
}

// Record is the outcome of one manifest entry, in manifest order.
type Record struct {
	Ligand  string        `json:"ligand"`
	Protein string        `json:"protein"`
	Backend string        `json:"backend"`
	Scored  bool          `json:"scored"`
	Score   float64       `json:"score,omitempty"`
	Outcome string        `json:"outcome"`
	Elapsed time.Duration `json:"elapsed"`
}

// Report is the result of one batch run.
type Report struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Records  []Record  `json:"records"`
}

// Scored returns the number of entries that produced a score.
func (r *Report) Scored() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Scored {
			n++
		}
	}
	return n
}

// Service runs batch evaluations.  Failed entries degrade to unscored
// records; the batch always runs to completion.
type Service struct {
	scorer  Scorer
	workers int
	logger  logging.Logger
	metrics *prometheus.PipelineMetrics
}

// NewService constructs the batch service.  workers below 1 is clamped to 1.
func NewService(scorer Scorer, workers int, logger logging.Logger, metrics *prometheus.PipelineMetrics) *Service {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NopPipelineMetrics()
	}
	return &Service{
		scorer:  scorer,
		workers: workers,
		logger:  logger.Named("batch"),
		metrics: metrics,
	}
}

// Run scores every manifest entry across the worker pool and returns the
// report with records in manifest order.  Cancelling ctx stops new entries
// from being dispatched; entries already running finish and are recorded.
func (s *Service) Run(ctx context.Context, entries []Entry) *Report {
	runID := uuid.NewString()
	report := &Report{
		RunID:   runID,
		Started: time.Now(),
		Records: make([]Record, len(entries)),
	}

	s.metrics.BatchEntriesTotal.WithLabelValues().Add(float64(len(entries)))

	s.logger.Info("batch run started",
		logging.String("run_id", runID),
		logging.Int("entries", len(entries)),
		logging.Int("workers", s.workers),
	)

	type job struct {
		index int
		entry Entry
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				s.metrics.BatchActiveWorkers.WithLabelValues().Inc()
				res := s.scorer.Score(ctx, j.entry.Request())
				s.metrics.BatchActiveWorkers.WithLabelValues().Dec()

				report.Records[j.index] = Record{
					Ligand:  j.entry.LigandPath,
					Protein: j.entry.ProteinPath,
					Backend: res.Backend,
					Scored:  res.Scored,
					Score:   res.Score,
					Outcome: res.Outcome.String(),
					Elapsed: res.Elapsed,
				}
			}
		}()
	}

dispatch:
	for i, e := range entries {
		select {
		case jobs <- job{index: i, entry: e}:
		case <-ctx.Done():
			s.logger.Warn("batch run cancelled",
				logging.String("run_id", runID),
				logging.Int("dispatched", i),
			)
			// Entries never dispatched get a cancelled record.
			for k := i; k < len(entries); k++ {
				report.Records[k] = Record{
					Ligand:  entries[k].LigandPath,
					Protein: entries[k].ProteinPath,
					Backend: entries[k].Backend,
					Outcome: "CANCELLED",
				}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	report.Finished = time.Now()
	s.logger.Info("batch run finished",
		logging.String("run_id", runID),
		logging.Int("scored", report.Scored()),
		logging.Int("total", len(report.Records)),
		logging.Duration("elapsed", report.Finished.Sub(report.Started)),
	)
	return report
}
