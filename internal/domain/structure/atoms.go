// Package structure handles on-disk molecular structure files: reading atom
// coordinates to derive the docking-box center, extracting AutoDock atom-type
// inventories from prepared PDBQT files, and converting between formats via
// an external converter.
package structure

import (
	"bufio"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/scoredock/scoredock/pkg/errors"
)

// Point is a position in Cartesian space, in Ångström.
type Point struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f, Z: p.Z * f}
}

// Centroid returns the mean position of the given atoms.  The docking-box
// center is defined as the centroid of the ligand's atoms.
func Centroid(atoms []Point) (Point, error) {
	if len(atoms) == 0 {
		return Point{}, errors.ParseFailure("cannot compute centroid of zero atoms")
	}
	var sum Point
	for _, a := range atoms {
		sum = sum.Add(a)
	}
	return sum.Scale(1 / float64(len(atoms))), nil
}

// isCoordinateRecord reports whether a PDB-family line carries atom
// coordinates.
func isCoordinateRecord(line string) bool {
	return strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
}

// ReadCoordinates parses the atom positions from a structure file.  The
// format is chosen by extension: .pdb and .pdbqt use fixed-column ATOM/HETATM
// records, .sdf and .mol use the V2000 counts line and atom block.  A file
// yielding zero atoms is an error.
func ReadCoordinates(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeInputMissing, "structure file not found").WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "opening structure file").WithDetail(path)
	}
	defer f.Close()

	var atoms []Point
	ext := strings.ToLower(lastExt(path))
	switch ext {
	case ".sdf", ".mol":
		atoms, err = readSDFCoordinates(f)
	default:
		atoms, err = readPDBCoordinates(f)
	}
	if err != nil {
		return nil, err
	}
	if len(atoms) == 0 {
		return nil, errors.ParseFailure("no atom records found").WithDetail(path)
	}
	return atoms, nil
}

// readPDBCoordinates extracts x/y/z from fixed PDB columns 31–54.
func readPDBCoordinates(f *os.File) ([]Point, error) {
	var atoms []Point
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !isCoordinateRecord(line) || len(line) < 54 {
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
		z, errZ := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
		if errX != nil || errY != nil || errZ != nil {
			continue
		}
		atoms = append(atoms, Point{X: x, Y: y, Z: z})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "reading structure file")
	}
	return atoms, nil
}

// readSDFCoordinates parses a V2000 molfile: the counts line is the fourth
// line, the atom block follows with coordinates in the first three fields.
func readSDFCoordinates(f *os.File) ([]Point, error) {
	scanner := bufio.NewScanner(f)

	// Three header lines.
	for i := 0; i < 3; i++ {
		if !scanner.Scan() {
			return nil, errors.ParseFailure("truncated molfile header")
		}
	}

	if !scanner.Scan() {
		return nil, errors.ParseFailure("missing molfile counts line")
	}
	counts := scanner.Text()
	if len(counts) < 3 {
		return nil, errors.ParseFailure("malformed molfile counts line").WithDetail(counts)
	}
	nAtoms, err := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	if err != nil || nAtoms < 0 {
		return nil, errors.ParseFailure("malformed molfile atom count").WithDetail(counts)
	}

	atoms := make([]Point, 0, nAtoms)
	for i := 0; i < nAtoms; i++ {
		if !scanner.Scan() {
			return nil, errors.ParseFailure("truncated molfile atom block")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, errors.ParseFailure("malformed molfile atom line").WithDetail(scanner.Text())
		}
		x, errX := strconv.ParseFloat(fields[0], 64)
		y, errY := strconv.ParseFloat(fields[1], 64)
		z, errZ := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, errors.ParseFailure("malformed molfile coordinates").WithDetail(scanner.Text())
		}
		atoms = append(atoms, Point{X: x, Y: y, Z: z})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "reading molfile")
	}
	return atoms, nil
}

// AtomTypes scans a prepared PDBQT file and returns the distinct AutoDock
// atom types — the last whitespace-separated token of every ATOM/HETATM
// record — as a sorted, duplicate-free slice.  The grid parameter file needs
// one inventory for the receptor and one for the ligand.
func AtomTypes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeInputMissing, "prepared structure not found").WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "opening prepared structure").WithDetail(path)
	}
	defer f.Close()

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !isCoordinateRecord(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		seen[fields[len(fields)-1]] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "scanning atom types")
	}
	if len(seen) == 0 {
		return nil, errors.ParseFailure("no typed atom records found").WithDetail(path)
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

// lastExt returns the final extension of path including the dot, or "".
func lastExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/' && path[i] != '\\'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
