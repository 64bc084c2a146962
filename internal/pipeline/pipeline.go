package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/enrich-cli/internal/annotation"
	"github.com/KaramelBytes/enrich-cli/internal/compound"
	"github.com/KaramelBytes/enrich-cli/internal/enrich"
	"github.com/KaramelBytes/enrich-cli/internal/overlap"
	"github.com/KaramelBytes/enrich-cli/internal/report"
	"github.com/KaramelBytes/enrich-cli/internal/table"
	"github.com/KaramelBytes/enrich-cli/internal/utils"
)

// ErrUnitsFailed is returned by callers that treat any failed unit as a
// failed run.
var ErrUnitsFailed = errors.New("one or more units failed")

// ManifestName is the batch manifest written to the output root.
const ManifestName = "enrich-run.json"

// Reference is the shared, read-only input of every unit.
type Reference struct {
	Groups   []annotation.Group
	Universe compound.Set
}

// Pipeline processes units against a Reference.
type Pipeline struct {
	Ref               Reference
	IdentifierColumns []string
	Table             table.Options
	Extract           compound.ExtractOptions
	Graph             overlap.Options
	Outputs           report.Outputs
	Workers           int

	// Progress receives per-unit status lines; nil or Quiet silences them.
	Progress io.Writer
	// Warn receives failure lines; it is not affected by Quiet.
	Warn  io.Writer
	Quiet bool
	Debug bool

	mu sync.Mutex
}

// Analysis is the in-memory result for one observed set.
type Analysis struct {
	Observed    int
	Totals      enrich.Totals
	Significant []enrich.Result
	Unit        report.Unit
}

// Analyze runs enrichment, ranking and graph construction for one observed
// set. It performs no I/O.
func Analyze(ref Reference, observed compound.Set, gopt overlap.Options) Analysis {
	results, tot := enrich.Compute(ref.Groups, ref.Universe, observed)
	ranked := enrich.Rank(results)
	sig := enrich.Significant(ranked, gopt.TopK)
	return Analysis{
		Observed:    observed.Len(),
		Totals:      tot,
		Significant: sig,
		Unit:        report.Unit{Ranked: ranked, Graph: overlap.Build(sig, gopt)},
	}
}

// Outcome records how a single unit went.
type Outcome struct {
	Path        string        `json:"path"`
	OutputDir   string        `json:"output_dir"`
	Status      string        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Observed    int           `json:"observed"`
	Significant int           `json:"significant"`
	Nodes       int           `json:"nodes"`
	Edges       int           `json:"edges"`
	Files       []string      `json:"files,omitempty"`
	Duration    time.Duration `json:"duration_ns"`

	err error
}

// Err returns the unit's failure, or nil.
func (o Outcome) Err() error { return o.err }

// Outcome statuses.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// RunUnit reads one unit, analyzes it and writes its outputs into outDir.
func (p *Pipeline) RunUnit(ctx context.Context, u Unit, outDir string) Outcome {
	start := time.Now()
	out := Outcome{Path: u.Path, OutputDir: outDir}
	fail := func(err error) Outcome {
		out.Status = StatusFailed
		out.err = fmt.Errorf("%s: %w", u.Rel, err)
		out.Error = out.err.Error()
		out.Duration = time.Since(start)
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Status = StatusCanceled
		out.err = err
		out.Error = err.Error()
		return out
	}

	observed, err := ReadObserved(u.Path, p.IdentifierColumns, p.Table, p.Extract)
	if err != nil {
		return fail(err)
	}
	a := Analyze(p.Ref, observed, p.Graph)
	if p.Debug {
		p.logf("  %s: observed=%d N=%d n=%d significant=%d\n", u.Rel, a.Observed, a.Totals.Population, a.Totals.Draws, len(a.Significant))
	}
	files, err := report.WriteUnit(outDir, p.Outputs, a.Unit)
	out.Files = files
	if err != nil {
		return fail(err)
	}
	out.Status = StatusOK
	out.Observed = a.Observed
	out.Significant = len(a.Significant)
	out.Nodes = a.Unit.Graph.Len()
	out.Edges = len(a.Unit.Graph.Edges())
	out.Duration = time.Since(start)
	return out
}

// Manifest summarizes one batch run.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Root       string    `json:"root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Groups     int       `json:"groups"`
	Universe   int       `json:"universe"`
	Units      []Outcome `json:"units"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

// RunBatch processes units with at most p.Workers in flight. Outcomes keep
// the order of units. A unit failure never aborts the batch; cancelling ctx
// marks units that have not started as canceled.
func (p *Pipeline) RunBatch(ctx context.Context, root string, units []Unit, outRoot string) *Manifest {
	m := &Manifest{
		RunID:     uuid.NewString(),
		Root:      root,
		StartedAt: time.Now().UTC(),
		Groups:    len(p.Ref.Groups),
		Universe:  p.Ref.Universe.Len(),
		Units:     make([]Outcome, len(units)),
	}
	dirs := OutputDirs(units, outRoot)
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	var done int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			o := p.RunUnit(gctx, u, dirs[i])
			m.Units[i] = o

			p.mu.Lock()
			done++
			n := done
			p.mu.Unlock()
			switch o.Status {
			case StatusOK:
				p.logf("[%d/%d] ✓ %s (%d significant, %d nodes, %d edges)\n", n, len(units), u.Rel, o.Significant, o.Nodes, o.Edges)
			case StatusFailed:
				p.warnf("[%d/%d] ✗ %s\n", n, len(units), o.Error)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range m.Units {
		switch o.Status {
		case StatusOK:
			m.Succeeded++
		default:
			m.Failed++
		}
	}
	m.FinishedAt = time.Now().UTC()
	return m
}

// WriteManifest stores m as JSON in dir and returns the file path.
func WriteManifest(dir string, m *Manifest) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("mkdir manifest dir: %w", err)
	}
	b, err := utils.PrettyJSON(m)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := utils.SafeWriteFile(path, b); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// Errors collects the failures of m in unit order.
func (m *Manifest) Errors() []error {
	var errs []error
	for _, o := range m.Units {
		if o.err != nil {
			errs = append(errs, o.err)
		}
	}
	return errs
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Quiet || p.Progress == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.Progress, format, args...)
}

func (p *Pipeline) warnf(format string, args ...any) {
	w := p.Warn
	if w == nil {
		w = os.Stderr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}
