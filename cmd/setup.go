package cmd

import (
	"fmt"

	"github.com/KaramelBytes/enrich-cli/internal/annotation"
	"github.com/KaramelBytes/enrich-cli/internal/compound"
	cfgpkg "github.com/KaramelBytes/enrich-cli/internal/config"
	"github.com/KaramelBytes/enrich-cli/internal/overlap"
	"github.com/KaramelBytes/enrich-cli/internal/pipeline"
	"github.com/KaramelBytes/enrich-cli/internal/project"
	"github.com/KaramelBytes/enrich-cli/internal/report"
	"github.com/KaramelBytes/enrich-cli/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// inputFlags are the per-invocation overrides shared by run and analyze.
type inputFlags struct {
	study      string
	reference  string
	universe   string
	outputDir  string
	topK       int
	labelWidth int
	prefix     string
	noRender   bool
}

func (f *inputFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.study, "study", "p", "", "study whose pinned reference, universe and data root are used")
	fs.StringVar(&f.reference, "reference", "", "reference pathway table (overrides config)")
	fs.StringVar(&f.universe, "universe", "", "reference universe list (overrides config)")
	fs.StringVar(&f.outputDir, "output-dir", "", "write outputs under this directory instead of next to each input")
	fs.IntVar(&f.topK, "top-k", 0, "number of most significant groups in the overlap graph")
	fs.IntVar(&f.labelWidth, "label-width", 0, "graph label wrap width in characters")
	fs.StringVar(&f.prefix, "prefix", "", "identifier prefix recognized as a compound ID")
	fs.BoolVar(&f.noRender, "no-render", false, "skip the DOT graph output")
}

// effective merges config, the selected study and changed flags (in that
// order of increasing precedence) into a copy of c.
func (f *inputFlags) effective(cmd *cobra.Command, c *cfgpkg.Global) (cfgpkg.Global, *project.Study, error) {
	eff := *c
	var st *project.Study
	if f.study != "" {
		dir, err := resolveStudyDirByName(f.study)
		if err != nil {
			return eff, nil, err
		}
		st, err = project.LoadStudy(dir)
		if err != nil {
			return eff, nil, err
		}
		if st.ReferenceFile != "" {
			eff.ReferenceFile = st.Resolve(st.ReferenceFile)
		}
		if st.UniverseFile != "" {
			eff.UniverseFile = st.Resolve(st.UniverseFile)
		}
		if st.DataRoot != "" {
			eff.DataRoot = st.Resolve(st.DataRoot)
		}
	}
	fl := cmd.Flags()
	if fl.Changed("reference") {
		eff.ReferenceFile = f.reference
	}
	if fl.Changed("universe") {
		eff.UniverseFile = f.universe
	}
	if fl.Changed("output-dir") {
		eff.OutputDir = f.outputDir
	}
	if fl.Changed("top-k") {
		eff.TopK = f.topK
	}
	if fl.Changed("label-width") {
		eff.LabelWidth = f.labelWidth
	}
	if fl.Changed("prefix") {
		eff.IDPrefix = f.prefix
	}
	if f.noRender {
		eff.Render = false
	}
	return eff, st, nil
}

func tableOptions(c *cfgpkg.Global) table.Options {
	opt := table.DefaultOptions()
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	return opt
}

func outputNames(c *cfgpkg.Global) report.Outputs {
	o := report.Outputs{
		Enrichment: c.Outputs.Enrichment,
		Degree:     c.Outputs.Degree,
		Graph:      c.Outputs.Graph,
	}
	if !c.Render {
		o.Graph = ""
	}
	return o
}

// buildPipeline loads the reference groups and universe named by c.
func buildPipeline(cmd *cobra.Command, c *cfgpkg.Global) (*pipeline.Pipeline, error) {
	if c.ReferenceFile == "" {
		return nil, fmt.Errorf("no reference file configured (use --reference or config set reference_file)")
	}
	topt := tableOptions(c)
	eopt := compound.ExtractOptions{Prefix: c.IDPrefix, Delimiter: c.ListDelimiter}
	cols := annotation.Columns{
		ID:          c.ReferenceColumns.ID,
		Description: c.ReferenceColumns.Description,
		Members:     c.ReferenceColumns.Members,
		Size:        c.ReferenceColumns.Size,
	}
	groups, err := annotation.LoadFile(c.ReferenceFile, cols, topt)
	if err != nil {
		return nil, fmt.Errorf("load reference: %w", err)
	}

	uniCol := c.UniverseColumn
	if uniCol == "" && len(c.IdentifierColumns) > 0 {
		uniCol = c.IdentifierColumns[0]
	}
	universe, err := pipeline.LoadUniverse(c.UniverseFile, uniCol, topt, eopt)
	if err != nil {
		return nil, err
	}
	if c.UniverseFile == "" && !quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no universe_file configured; Hits_N and Num_N will be empty")
	}
	if debug {
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d groups from %s (N=%d); universe has %d IDs\n",
			len(groups), c.ReferenceFile, annotation.TotalUniverse(groups), universe.Len())
	}

	return &pipeline.Pipeline{
		Ref:               pipeline.Reference{Groups: groups, Universe: universe},
		IdentifierColumns: c.IdentifierColumns,
		Table:             topt,
		Extract:           eopt,
		Graph:             overlap.Options{TopK: c.TopK, LabelWidth: c.LabelWidth},
		Outputs:           outputNames(c),
		Workers:           c.Workers,
		Progress:          cmd.OutOrStdout(),
		Warn:              cmd.ErrOrStderr(),
		Quiet:             quiet,
		Debug:             debug,
	}, nil
}
