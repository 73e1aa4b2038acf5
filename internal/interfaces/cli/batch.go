package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scoredock/scoredock/internal/application/evaluation"
	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
)

// batchOptions holds the `batch` command flags.
type batchOptions struct {
	Manifest string
	Results  string
	Summary  string
}

// newBatchCmd builds the manifest-driven batch command.  Results are written
// as CSV, the run summary as JSON; "-" selects stdout for either.  Failed
// entries become unscored records, never abort the run, and do not affect
// the exit status.
func newBatchCmd() *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score every entry of a batch manifest",
		Example: `  scoredock batch -m batch.csv --results results.csv --summary summary.json
  scoredock batch -m batch.json --results -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			entries, err := evaluation.LoadManifest(opts.Manifest)
			if err != nil {
				return err
			}

			if cliCtx.Config.Metrics.Enabled {
				startMetricsListener(cliCtx)
			}

			report := cliCtx.Batch.Run(cmd.Context(), entries)

			if err := writeTo(opts.Results, cmd, report.WriteCSV); err != nil {
				return err
			}
			if opts.Summary != "" {
				if err := writeTo(opts.Summary, cmd, report.WriteSummary); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Manifest, "manifest", "m", "", "batch manifest file (CSV or JSON)")
	f.StringVar(&opts.Results, "results", "-", "results CSV destination (\"-\" for stdout)")
	f.StringVar(&opts.Summary, "summary", "", "run summary JSON destination (\"-\" for stdout)")

	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

// writeTo runs write against the named file, or the command's stdout for "-".
func writeTo(dest string, cmd *cobra.Command, write func(w io.Writer) error) error {
	if dest == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// startMetricsListener exposes /metrics for the duration of the batch run.
// Listener failures are logged, not fatal; scoring matters more than
// scraping.
func startMetricsListener(cliCtx *CLIContext) {
	if cliCtx.Collector == nil {
		return
	}
	addr := cliCtx.Config.Metrics.ListenAddr
	mux := http.NewServeMux()
	mux.Handle("/metrics", cliCtx.Collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		cliCtx.Logger.Info("metrics listener started", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			cliCtx.Logger.Warn("metrics listener stopped", logging.Err(err))
		}
	}()
}
