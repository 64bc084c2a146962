package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/enrich-cli/internal/pipeline"
	"github.com/KaramelBytes/enrich-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	anaFlags inputFlags
	anaWrite bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run enrichment for a single result table",
	Long: `Run enrichment for a single result table. The ranked enrichment table is
printed to stdout unless --write (outputs next to the file) or --output-dir is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		eff, _, err := anaFlags.effective(cmd, c)
		if err != nil {
			return err
		}
		p, err := buildPipeline(cmd, &eff)
		if err != nil {
			return err
		}
		observed, err := pipeline.ReadObserved(path, p.IdentifierColumns, p.Table, p.Extract)
		if err != nil {
			return err
		}
		a := pipeline.Analyze(p.Ref, observed, p.Graph)
		if debug {
			fmt.Fprintf(cmd.OutOrStdout(), "observed=%d N=%d n=%d significant=%d\n",
				a.Observed, a.Totals.Population, a.Totals.Draws, len(a.Significant))
		}

		dir := ""
		switch {
		case cmd.Flags().Changed("output-dir") && eff.OutputDir != "":
			dir = eff.OutputDir
		case anaWrite:
			dir = filepath.Dir(path)
		}
		if dir == "" {
			return report.WriteEnrichment(cmd.OutOrStdout(), a.Unit.Ranked)
		}
		files, err := report.WriteUnit(dir, p.Outputs, a.Unit)
		if err != nil {
			return err
		}
		if !quiet {
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", f)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.bind(analyzeCmd.Flags())
	analyzeCmd.Flags().BoolVar(&anaWrite, "write", false, "write outputs next to the input file")
}
