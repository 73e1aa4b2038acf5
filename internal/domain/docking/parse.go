package docking

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/scoredock/scoredock/pkg/errors"
)

// The Vina-family engines print a fixed-width result table introduced by a
// dashed separator:
//
//	mode |   affinity | dist from best mode
//	     | (kcal/mol) | rmsd l.b.| rmsd u.b.
//	-----+------------+----------+----------
//	   1       -7.52      0.000      0.000
//
// The accepted result is the row immediately after the separator, and only
// when its rank column is "1".

// parseResultTable extracts the rank-1 score from a Vina-style stdout table.
func parseResultTable(stdout string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		if !strings.HasPrefix(strings.TrimSpace(scanner.Text()), "-----") {
			continue
		}
		if !scanner.Scan() {
			return 0, errors.ParseFailure("result table separator with no following row")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			return 0, errors.ParseFailure("result table row too short").WithDetail(scanner.Text())
		}
		if fields[0] != "1" {
			return 0, errors.ParseFailure("first result row is not rank 1").WithDetail(scanner.Text())
		}
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, errors.ParseFailure("result row score is not numeric").WithDetail(scanner.Text())
		}
		return score, nil
	}
	return 0, errors.ParseFailure("no result table in engine output")
}

// parseAffinityLine extracts the score from a minimize-mode affinity line:
//
//	Affinity: -5.72376  0.00000 (kcal/mol)
func parseAffinityLine(stdout string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Affinity:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		return score, nil
	}
	return 0, errors.ParseFailure("no affinity line in engine output")
}

// parseDLG extracts the best binding energy from an AutoDock-GPU .dlg report.
// Two line shapes carry it:
//
//	RANKING    1      -7.52      0.00      0.00
//	Estimated Free Energy of Binding    =   -6.10 kcal/mol
//
// The whole report is scanned and the last match under either rule wins,
// since the engine appends its final clustering after per-run sections.
func parseDLG(report string) (float64, error) {
	var best float64
	found := false

	scanner := bufio.NewScanner(strings.NewReader(report))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "RANKING"):
			fields := strings.Fields(trimmed)
			if len(fields) >= 3 && fields[1] == "1" {
				if v, err := strconv.ParseFloat(fields[2], 64); err == nil {
					best = v
					found = true
				}
			}
		case strings.Contains(line, "Estimated Free Energy of Binding"):
			_, after, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			fields := strings.Fields(after)
			if len(fields) == 0 {
				continue
			}
			if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
				best = v
				found = true
			}
		}
	}

	if !found {
		return 0, errors.ParseFailure("no binding energy in docking report")
	}
	return best, nil
}

// Known-benign warning noise emitted by the conversion sub-tool embedded in
// the rescoring engine.  These blocks are stripped from stderr before it is
// attached to a parse failure so operators are not misled.
var benignStderrMarkers = []string{
	"THIS CONECT RECORD WILL BE IGNORED",
	"Problems reading a",
	"According to the PDB",
}

// sanitizeStderr removes Open Babel warning blocks (opened by a line
// containing "*** Open Babel Warning" and closed by a "=" ruler line) and
// known-benign single-line warnings.
func sanitizeStderr(stderr string) string {
	if stderr == "" {
		return ""
	}

	var kept []string
	inWarningBlock := false

	scanner := bufio.NewScanner(strings.NewReader(stderr))
scan:
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "*** Open Babel Warning") {
			inWarningBlock = true
			continue
		}
		if inWarningBlock {
			if strings.HasPrefix(strings.TrimSpace(line), "=") {
				inWarningBlock = false
			}
			continue
		}
		for _, marker := range benignStderrMarkers {
			if strings.Contains(line, marker) {
				continue scan
			}
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
