package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoredock/scoredock/internal/domain/docking"
)

// scoreOptions holds the `score` command flags.
type scoreOptions struct {
	Ligand         string
	Protein        string
	Backend        string
	BoxSize        float64
	Exhaustiveness int
	NumRuns        int
	CNNScoring     string
	Output         string
}

// newScoreCmd builds the single-request scoring command.  The result record
// goes to stdout; diagnostics go to the logger on stderr.  The command exits
// non-zero when no score was produced so shell pipelines can branch on it.
func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one ligand against one protein target",
		Example: `  scoredock score -l data/ligands/mol.sdf -p data/targets/4eiy.pdb
  scoredock score -l mol.sdf -p target.pdb -b gnina --cnn-scoring rescore`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			req := docking.Request{
				ProteinPath: opts.Protein,
				LigandPath:  opts.Ligand,
				Backend:     opts.Backend,
				Params: docking.Params{
					BoxSize:        opts.BoxSize,
					Exhaustiveness: opts.Exhaustiveness,
					NumRuns:        opts.NumRuns,
					CNNScoring:     opts.CNNScoring,
				},
			}

			res := cliCtx.Scorer.Score(cmd.Context(), req)
			if err := printResult(cmd, opts.Output, res); err != nil {
				return err
			}
			if !res.Scored {
				return fmt.Errorf("no score produced: %s", res.Outcome)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Ligand, "ligand", "l", "", "ligand structure file (SDF or PDB)")
	f.StringVarP(&opts.Protein, "protein", "p", "", "protein target structure file (PDB)")
	f.StringVarP(&opts.Backend, "backend", "b", docking.BackendQVina, "docking backend (qvina, gnina, autodock-gpu)")
	f.Float64Var(&opts.BoxSize, "box-size", 0, "docking box edge length in Å (0 = backend default)")
	f.IntVar(&opts.Exhaustiveness, "exhaustiveness", 0, "search effort (0 = backend default)")
	f.IntVar(&opts.NumRuns, "num-runs", 0, "independent docking runs, grid backend only (0 = default)")
	f.StringVar(&opts.CNNScoring, "cnn-scoring", "", "CNN scoring mode, gnina only (none, rescore, refinement, all)")
	f.StringVarP(&opts.Output, "output", "o", "text", "output format (text, json)")

	_ = cmd.MarkFlagRequired("ligand")
	_ = cmd.MarkFlagRequired("protein")
	return cmd
}

// printResult renders one scoring result on the command's stdout.
func printResult(cmd *cobra.Command, format string, res docking.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Backend        string  `json:"backend"`
			Scored         bool    `json:"scored"`
			Score          float64 `json:"score,omitempty"`
			Outcome        string  `json:"outcome"`
			ElapsedSeconds float64 `json:"elapsed_seconds"`
		}{res.Backend, res.Scored, res.Score, res.Outcome.String(), res.Elapsed.Seconds()})
	case "text":
		if res.Scored {
			fmt.Fprintf(cmd.OutOrStdout(), "%.5f\n", res.Score)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "unscored (%s)\n", res.Outcome)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// newBackendsCmd lists the registered engine adapters.
func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available docking backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			for _, name := range cliCtx.Scorer.Backends() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
