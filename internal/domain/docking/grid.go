package docking

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scoredock/scoredock/internal/domain/structure"
	"github.com/scoredock/scoredock/internal/infrastructure/execution"
	"github.com/scoredock/scoredock/internal/infrastructure/toolchain"
	"github.com/scoredock/scoredock/pkg/errors"
)

// AutogridTool is the logical toolchain name of the grid-field generator.
const AutogridTool = "autogrid4"

// Fixed grid geometry: 40 points per axis at 0.375 Å spacing gives a 15 Å
// cube, matching the engine's expectations for fragment-sized ligands.
const (
	gridPoints     = 40
	gridSpacing    = 0.375
	gridSmooth     = 0.5
	gridDielectric = -0.1465
)

// GridParams describes one grid-parameter artifact.  It is regenerated for
// every request — atom-type inventories depend on the ligand — and never
// cached.
type GridParams struct {
	// ReceptorFile is the prepared receptor file name (workspace-relative;
	// the generator runs with the workspace as working directory).
	ReceptorFile string

	// ReceptorTypes and LigandTypes are the sorted atom-type inventories.
	ReceptorTypes []string
	LigandTypes   []string

	// Center is the docking-box center.
	Center structure.Point
}

// stem returns the receptor file name without extension; every map artifact
// is named after it.
func (g GridParams) stem() string {
	return strings.TrimSuffix(g.ReceptorFile, filepath.Ext(g.ReceptorFile))
}

// FieldFile returns the name of the grid-field map the generator will write.
func (g GridParams) FieldFile() string {
	return g.stem() + ".maps.fld"
}

// Render emits the declarative grid-parameter text consumed by the
// generator: fixed geometry, both type inventories, one output map per
// distinct ligand atom type, and the mandatory electrostatic and desolvation
// maps.
func (g GridParams) Render() string {
	stem := g.stem()

	var sb strings.Builder
	fmt.Fprintf(&sb, "npts %d %d %d\n", gridPoints, gridPoints, gridPoints)
	fmt.Fprintf(&sb, "gridfld %s\n", g.FieldFile())
	fmt.Fprintf(&sb, "spacing %g\n", gridSpacing)
	fmt.Fprintf(&sb, "receptor_types %s\n", strings.Join(g.ReceptorTypes, " "))
	fmt.Fprintf(&sb, "ligand_types %s\n", strings.Join(g.LigandTypes, " "))
	fmt.Fprintf(&sb, "receptor %s\n", g.ReceptorFile)
	fmt.Fprintf(&sb, "gridcenter %.3f %.3f %.3f\n", g.Center.X, g.Center.Y, g.Center.Z)
	fmt.Fprintf(&sb, "smooth %g\n", gridSmooth)
	for _, atomType := range g.LigandTypes {
		fmt.Fprintf(&sb, "map %s.%s.map\n", stem, atomType)
	}
	fmt.Fprintf(&sb, "elecmap %s.e.map\n", stem)
	fmt.Fprintf(&sb, "dsolvmap %s.d.map\n", stem)
	fmt.Fprintf(&sb, "dielectric %g\n", gridDielectric)
	return sb.String()
}

// WriteTo writes the rendered artifact as <stem>.gpf inside the workspace
// and returns its path.
func (g GridParams) WriteTo(ws *Workspace) (string, error) {
	path := ws.Path(g.stem() + ".gpf")
	if err := os.WriteFile(path, []byte(g.Render()), 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "writing grid parameter file").WithDetail(path)
	}
	return path, nil
}

// generateGrids locates the grid-field generator and runs it against the
// parameter file, inside the workspace.  Without maps the engine cannot
// score, so resolution failure or a non-zero exit aborts the request.
func generateGrids(ctx context.Context, resolver toolchain.Resolver, runner execution.Runner, ws *Workspace, gpfPath string) error {
	generator, err := resolver.Resolve(ctx, AutogridTool)
	if err != nil {
		return err
	}

	logPath := strings.TrimSuffix(gpfPath, ".gpf") + ".glg"
	res, err := runner.Run(ctx, execution.Command{
		Path: generator,
		Args: []string{"-p", gpfPath, "-l", logPath},
		Dir:  ws.Dir,
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeToolFailure, "grid generator did not run")
	}
	if !res.Ok() {
		return errors.Newf(errors.CodeToolFailure,
			"grid generator exited with status %d", res.ExitCode).
			WithDetail(res.Stderr)
	}
	return nil
}
