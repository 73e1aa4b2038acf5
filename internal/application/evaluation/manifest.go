// Package evaluation provides the application-level batch service: a
// manifest of ligand/protein pairs is scored across a bounded worker pool
// and the outcomes are reported as CSV records plus a JSON run summary.
package evaluation

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/scoredock/scoredock/internal/domain/docking"
	"github.com/scoredock/scoredock/pkg/errors"
)

// Entry is one manifest row: a ligand to score against a protein target with
// a chosen backend.
type Entry struct {
	LigandPath  string `json:"ligand"`
	ProteinPath string `json:"protein"`
	Backend     string `json:"backend"`

	// Exhaustiveness optionally overrides the backend default for this entry.
	Exhaustiveness int `json:"exhaustiveness,omitempty"`
}

// Request converts the entry to a docking request.
func (e Entry) Request() docking.Request {
	return docking.Request{
		ProteinPath: e.ProteinPath,
		LigandPath:  e.LigandPath,
		Backend:     e.Backend,
		Params:      docking.Params{Exhaustiveness: e.Exhaustiveness},
	}
}

// LoadManifest reads a batch manifest from path.  The format is chosen by
// extension: .json holds an array of entries, anything else is parsed as CSV
// with a "ligand,protein,backend[,exhaustiveness]" header row.
func LoadManifest(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputMissing("manifest not found").WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "opening manifest").WithDetail(path)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return parseJSONManifest(f)
	}
	return parseCSVManifest(f)
}

func parseJSONManifest(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailure, "decoding JSON manifest")
	}
	return validateEntries(entries)
}

// csvColumns maps header names to Entry fields.  Column order is free;
// unknown columns are ignored.
func parseCSVManifest(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailure, "reading manifest header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"ligand", "protein", "backend"} {
		if _, ok := col[required]; !ok {
			return nil, errors.ParseFailure("manifest header missing column").WithDetail(required)
		}
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeParseFailure, "reading manifest row")
		}

		e := Entry{
			LigandPath:  record[col["ligand"]],
			ProteinPath: record[col["protein"]],
			Backend:     record[col["backend"]],
		}
		if i, ok := col["exhaustiveness"]; ok && i < len(record) && record[i] != "" {
			n, err := strconv.Atoi(record[i])
			if err != nil {
				return nil, errors.ParseFailure("manifest exhaustiveness is not numeric").WithDetail(record[i])
			}
			e.Exhaustiveness = n
		}
		entries = append(entries, e)
	}
	return validateEntries(entries)
}

func validateEntries(entries []Entry) ([]Entry, error) {
	if len(entries) == 0 {
		return nil, errors.ParseFailure("manifest contains no entries")
	}
	for i, e := range entries {
		if e.LigandPath == "" || e.ProteinPath == "" || e.Backend == "" {
			return nil, errors.Newf(errors.CodeValidation,
				"manifest entry %d: ligand, protein and backend are all required", i+1)
		}
	}
	return entries, nil
}
