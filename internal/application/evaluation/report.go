package evaluation

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/scoredock/scoredock/pkg/errors"
)

// csvHeader is the column layout of the results file.
var csvHeader = []string{"ligand", "protein", "backend", "scored", "score", "outcome", "elapsed_seconds"}

// WriteCSV writes one row per record, in manifest order.  Unscored records
// leave the score column empty rather than writing a misleading zero.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "writing results header")
	}
	for _, rec := range r.Records {
		score := ""
		if rec.Scored {
			score = strconv.FormatFloat(rec.Score, 'f', -1, 64)
		}
		row := []string{
			rec.Ligand,
			rec.Protein,
			rec.Backend,
			strconv.FormatBool(rec.Scored),
			score,
			rec.Outcome,
			strconv.FormatFloat(rec.Elapsed.Seconds(), 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "writing results row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "flushing results")
	}
	return nil
}

// Summary is the aggregate view of one run.
type Summary struct {
	RunID          string         `json:"run_id"`
	Started        string         `json:"started"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Total          int            `json:"total"`
	Scored         int            `json:"scored"`
	Failed         int            `json:"failed"`
	Outcomes       map[string]int `json:"outcomes"`
	BestScore      *float64       `json:"best_score,omitempty"`
	BestLigand     string         `json:"best_ligand,omitempty"`
}

// Summarize aggregates the report: outcome counts plus the best (lowest)
// binding energy and the ligand that produced it.
func (r *Report) Summarize() Summary {
	s := Summary{
		RunID:          r.RunID,
		Started:        r.Started.UTC().Format("2006-01-02T15:04:05Z"),
		ElapsedSeconds: r.Finished.Sub(r.Started).Seconds(),
		Total:          len(r.Records),
		Outcomes:       make(map[string]int),
	}
	for _, rec := range r.Records {
		s.Outcomes[rec.Outcome]++
		if !rec.Scored {
			s.Failed++
			continue
		}
		s.Scored++
		if s.BestScore == nil || rec.Score < *s.BestScore {
			score := rec.Score
			s.BestScore = &score
			s.BestLigand = rec.Ligand
		}
	}
	return s
}

// WriteSummary writes the JSON run summary.
func (r *Report) WriteSummary(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Summarize()); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encoding run summary")
	}
	return nil
}
