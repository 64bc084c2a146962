package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/KaramelBytes/enrich-cli/internal/annotation"
	"github.com/KaramelBytes/enrich-cli/internal/compound"
	"github.com/KaramelBytes/enrich-cli/internal/overlap"
	"github.com/KaramelBytes/enrich-cli/internal/report"
	"github.com/KaramelBytes/enrich-cli/internal/table"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testPipeline() *Pipeline {
	return &Pipeline{
		Ref: Reference{
			Groups: []annotation.Group{
				{ID: "G1", Description: "first", Members: compound.NewSet("C1", "C2", "C3"), UniverseSize: 3},
				{ID: "G2", Description: "second", Members: compound.NewSet("C2", "C4"), UniverseSize: 2},
				{ID: "G3", Description: "third", Members: compound.NewSet("C5"), UniverseSize: 1},
			},
			Universe: compound.NewSet("C1", "C2", "C3", "C4"),
		},
		IdentifierColumns: []string{"External Identifier"},
		Table:             table.DefaultOptions(),
		Extract:           compound.DefaultExtractOptions(),
		Graph:             overlap.DefaultOptions(),
		Outputs:           report.DefaultOutputs(),
		Workers:           2,
		Warn:              &strings.Builder{},
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "x.csv"), "h\n")
	writeFile(t, filepath.Join(root, "a", "enrichment.csv"), "h\n")
	writeFile(t, filepath.Join(root, "b", "y.tsv"), "h\n")
	writeFile(t, filepath.Join(root, ".cache", "z.csv"), "h\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "x\n")
	writeFile(t, filepath.Join(root, "psat.csv"), "h\n")

	units, err := Discover(root, DiscoverOptions{
		ExcludeNames: report.DefaultOutputs().Names(),
		ExcludePaths: []string{filepath.Join(root, "psat.csv")},
	})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	var rels []string
	for _, u := range units {
		rels = append(rels, filepath.ToSlash(u.Rel))
	}
	if !reflect.DeepEqual(rels, []string{"a/x.csv", "b/y.tsv"}) {
		t.Fatalf("units = %v", rels)
	}
}

func TestDiscoverNoUnits(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "readme.md"), "x")
	if _, err := Discover(root, DiscoverOptions{}); !errors.Is(err, ErrNoUnits) {
		t.Fatalf("expected ErrNoUnits, got %v", err)
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.csv")
	writeFile(t, path, "h\n")
	units, err := Discover(path, DiscoverOptions{})
	if err != nil || len(units) != 1 || units[0].Path != path {
		t.Fatalf("units = %+v, err = %v", units, err)
	}
}

func TestOutputDirs(t *testing.T) {
	root := filepath.FromSlash("/data")
	units := []Unit{
		{Path: filepath.Join(root, "a", "x.csv"), Rel: filepath.Join("a", "x.csv")},
		{Path: filepath.Join(root, "b", "y.csv"), Rel: filepath.Join("b", "y.csv")},
		{Path: filepath.Join(root, "b", "z.xlsx"), Rel: filepath.Join("b", "z.xlsx")},
	}
	got := OutputDirs(units, "")
	want := []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "b", "y"),
		filepath.Join(root, "b", "z"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("alongside = %v, want %v", got, want)
	}
	out := filepath.FromSlash("/out")
	got = OutputDirs(units[:1], out)
	if got[0] != filepath.Join(out, "a") {
		t.Fatalf("mirrored = %v", got)
	}
}

func TestLoadUniverseText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.txt")
	writeFile(t, path, "# KEGG compounds\nC1\n\n'C2'\nX7\nC3, C4\n")
	u, err := LoadUniverse(path, "", table.DefaultOptions(), compound.DefaultExtractOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := u.Sorted(); !reflect.DeepEqual(got, []string{"C1", "C2", "C3", "C4"}) {
		t.Fatalf("universe = %v", got)
	}
}

func TestLoadUniverseTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.csv")
	writeFile(t, path, "Name,KEGG\nalpha,C10\nbeta,\ngamma,C11\n")
	u, err := LoadUniverse(path, "kegg", table.DefaultOptions(), compound.DefaultExtractOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := u.Sorted(); !reflect.DeepEqual(got, []string{"C10", "C11"}) {
		t.Fatalf("universe = %v", got)
	}
	if _, err := LoadUniverse(path, "HMDB", table.DefaultOptions(), compound.DefaultExtractOptions()); !errors.Is(err, table.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoadUniverseEmptyPath(t *testing.T) {
	u, err := LoadUniverse("", "", table.DefaultOptions(), compound.DefaultExtractOptions())
	if err != nil || u.Len() != 0 {
		t.Fatalf("universe = %v, err = %v", u, err)
	}
}

func TestReadObserved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.csv")
	writeFile(t, path, "Name,External Identifier,Alt\nA,C1,C9\nB,\"C2, C4\",\nC,HMDB1,\nD,C1,\n")
	got, err := ReadObserved(path, []string{"External Identifier"}, table.DefaultOptions(), compound.DefaultExtractOptions())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got.Sorted(), []string{"C1", "C2", "C4"}) {
		t.Fatalf("observed = %v", got.Sorted())
	}
	both, err := ReadObserved(path, []string{"External Identifier", "Alt"}, table.DefaultOptions(), compound.DefaultExtractOptions())
	if err != nil || !both.Contains("C9") {
		t.Fatalf("union = %v, err = %v", both.Sorted(), err)
	}
	if _, err := ReadObserved(path, []string{"KEGG"}, table.DefaultOptions(), compound.DefaultExtractOptions()); !errors.Is(err, table.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	p := testPipeline()
	a := Analyze(p.Ref, compound.NewSet("C1", "C2", "C4"), p.Graph)
	var ids []string
	for _, r := range a.Unit.Ranked {
		ids = append(ids, r.Group.ID)
	}
	if !reflect.DeepEqual(ids, []string{"G2", "G1", "G3"}) {
		t.Fatalf("ranked = %v", ids)
	}
	if len(a.Significant) != 2 || a.Unit.Graph.Len() != 2 || len(a.Unit.Graph.Edges()) != 1 {
		t.Fatalf("significant=%d nodes=%d edges=%d", len(a.Significant), a.Unit.Graph.Len(), len(a.Unit.Graph.Edges()))
	}
	if a.Totals.Population != 6 || a.Totals.Draws != 4 {
		t.Fatalf("totals = %+v", a.Totals)
	}
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad", "unit.csv"), "Name,KEGG\nA,C1\n")
	writeFile(t, filepath.Join(root, "good", "unit.csv"), "Name,External Identifier\nA,C1\nB,\"C2, C4\"\n")
	units, err := Discover(root, DiscoverOptions{ExcludeNames: report.DefaultOutputs().Names()})
	if err != nil {
		t.Fatal(err)
	}
	var progress strings.Builder
	p := testPipeline()
	p.Progress = &progress

	m := p.RunBatch(context.Background(), root, units, "")
	if m.RunID == "" || m.Succeeded != 1 || m.Failed != 1 {
		t.Fatalf("manifest = %+v", m)
	}
	if m.Units[0].Status != StatusFailed || !errors.Is(m.Units[0].Err(), table.ErrMissingColumn) {
		t.Fatalf("bad unit = %+v", m.Units[0])
	}
	if m.Units[1].Status != StatusOK || m.Units[1].Nodes != 2 || m.Units[1].Edges != 1 {
		t.Fatalf("good unit = %+v", m.Units[1])
	}
	if len(m.Errors()) != 1 {
		t.Fatalf("errors = %v", m.Errors())
	}
	if !strings.Contains(progress.String(), "✓") {
		t.Fatalf("progress = %q", progress.String())
	}

	f, err := os.Open(filepath.Join(root, "good", "enrichment.csv"))
	if err != nil {
		t.Fatalf("open enrichment: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 || rows[1][0] != "G2" || rows[3][7] != "1" {
		t.Fatalf("enrichment rows = %v", rows)
	}
	if pv, err := strconv.ParseFloat(rows[1][7], 64); err != nil || math.Abs(pv-0.4) > 1e-12 {
		t.Fatalf("G2 p = %q", rows[1][7])
	}
	for _, name := range []string{"degree.csv", "enrichment.dot"} {
		if _, err := os.Stat(filepath.Join(root, "good", name)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "bad", "enrichment.csv")); !os.IsNotExist(err) {
		t.Fatalf("failed unit should not write outputs: %v", err)
	}

	path, err := WriteManifest(root, m)
	if err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	b, _ := os.ReadFile(path)
	var back Manifest
	if err := json.Unmarshal(b, &back); err != nil || back.RunID != m.RunID || back.Failed != 1 {
		t.Fatalf("manifest round trip: %+v, %v", back, err)
	}
}

func TestRunBatchCanceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "unit.csv"), "External Identifier\nC1\n")
	units := []Unit{{Path: filepath.Join(root, "unit.csv"), Rel: "unit.csv"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := testPipeline().RunBatch(ctx, root, units, "")
	if m.Failed != 1 || m.Units[0].Status != StatusCanceled {
		t.Fatalf("manifest = %+v", m)
	}
}

func TestRunBatchQuiet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "unit.csv"), "External Identifier\nC1\n")
	units := []Unit{{Path: filepath.Join(root, "unit.csv"), Rel: "unit.csv"}}
	var progress strings.Builder
	p := testPipeline()
	p.Progress = &progress
	p.Quiet = true
	outRoot := filepath.Join(root, "out")
	m := p.RunBatch(context.Background(), root, units, outRoot)
	if m.Succeeded != 1 || progress.Len() != 0 {
		t.Fatalf("succeeded=%d progress=%q", m.Succeeded, progress.String())
	}
	if _, err := os.Stat(filepath.Join(outRoot, "enrichment.csv")); err != nil {
		t.Fatalf("mirrored output missing: %v", err)
	}
}
