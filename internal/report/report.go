// Package report writes the per-unit enrichment outputs.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/enrich-cli/internal/compound"
	"github.com/KaramelBytes/enrich-cli/internal/enrich"
	"github.com/KaramelBytes/enrich-cli/internal/overlap"
	"github.com/KaramelBytes/enrich-cli/internal/utils"
)

// EnrichmentHeader is the column layout of the ranked table.
var EnrichmentHeader = []string{"ID", "Description", "Num", "Hits_N", "Num_N", "Hits_n", "Num_n", "P value"}

// DegreeHeader is the column layout of the degree table.
var DegreeHeader = []string{"Description", "Degree", "Connected Nodes"}

// Outputs names the files written next to each unit.
type Outputs struct {
	Enrichment string
	Degree     string
	Graph      string
}

// DefaultOutputs returns enrichment.csv, degree.csv and enrichment.dot.
func DefaultOutputs() Outputs {
	return Outputs{Enrichment: "enrichment.csv", Degree: "degree.csv", Graph: "enrichment.dot"}
}

// Names lists the configured file names, skipping empty ones.
func (o Outputs) Names() []string {
	var out []string
	for _, n := range []string{o.Enrichment, o.Degree, o.Graph} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// FormatPValue renders p with the shortest representation that round-trips.
func FormatPValue(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// WriteEnrichment writes one row per result, in the given order.
func WriteEnrichment(w io.Writer, results []enrich.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EnrichmentHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		rec := []string{
			r.Group.ID,
			r.Group.Description,
			strconv.Itoa(r.Group.UniverseSize),
			compound.FormatList(r.HitsUniverse),
			strconv.Itoa(r.NumUniverse),
			compound.FormatList(r.HitsSample),
			strconv.Itoa(r.NumSample),
			FormatPValue(r.PValue),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", r.Group.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDegrees writes one row per record, in the given order. Labels are
// flattened to a single line.
func WriteDegrees(w io.Writer, records []overlap.DegreeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DegreeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		neighbors := make([]string, len(r.Neighbors))
		for i, n := range r.Neighbors {
			neighbors[i] = overlap.FlattenLabel(n)
		}
		rec := []string{
			overlap.FlattenLabel(r.Label),
			strconv.Itoa(r.Degree),
			strings.Join(neighbors, ", "),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Unit bundles everything written for one observed-subset unit.
type Unit struct {
	// Ranked holds every group, ascending by p-value.
	Ranked []enrich.Result
	Graph  *overlap.Graph
}

// DegreeTable returns the graph's degree records sorted by descending degree.
func (u Unit) DegreeTable() []overlap.DegreeRecord {
	if u.Graph == nil {
		return nil
	}
	recs := u.Graph.Degrees()
	overlap.SortByDegree(recs)
	return recs
}

// WriteUnit writes the ranked table, degree table and (when names.Graph is
// set) the DOT rendering into dir. Each file is replaced atomically.
func WriteUnit(dir string, names Outputs, u Unit) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("mkdir output dir: %w", err)
	}
	var written []string
	emit := func(name string, fill func(io.Writer) error) error {
		if name == "" {
			return nil
		}
		var buf bytes.Buffer
		if err := fill(&buf); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}
	if err := emit(names.Enrichment, func(w io.Writer) error { return WriteEnrichment(w, u.Ranked) }); err != nil {
		return written, err
	}
	if err := emit(names.Degree, func(w io.Writer) error { return WriteDegrees(w, u.DegreeTable()) }); err != nil {
		return written, err
	}
	if u.Graph != nil {
		if err := emit(names.Graph, func(w io.Writer) error { return WriteDOT(w, u.Graph) }); err != nil {
			return written, err
		}
	}
	return written, nil
}
