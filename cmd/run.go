package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/KaramelBytes/enrich-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runFlags   inputFlags
	runWorkers int
)

var runCmd = &cobra.Command{
	Use:   "run [data-root]",
	Short: "Run enrichment over every result table under a data root",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		eff, st, err := runFlags.effective(cmd, c)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			eff.Workers = runWorkers
		}
		root := eff.DataRoot
		if len(args) == 1 {
			root = args[0]
		}
		if root == "" {
			return fmt.Errorf("no data root given (pass one, use --study, or config set data_root)")
		}

		p, err := buildPipeline(cmd, &eff)
		if err != nil {
			return err
		}
		names := append(p.Outputs.Names(), pipeline.ManifestName)
		units, err := pipeline.Discover(root, pipeline.DiscoverOptions{
			ExcludeNames: names,
			ExcludePaths: []string{eff.ReferenceFile, eff.UniverseFile, eff.OutputDir},
		})
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d result tables under %s\n", len(units), root)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		m := p.RunBatch(ctx, root, units, eff.OutputDir)

		manifestDir := eff.OutputDir
		if manifestDir == "" {
			manifestDir = root
			if info, err := os.Stat(root); err == nil && !info.IsDir() {
				manifestDir = filepath.Dir(root)
			}
		}
		manifestPath, err := pipeline.WriteManifest(manifestDir, m)
		if err != nil {
			return err
		}
		if st != nil {
			st.RecordRun(m, manifestPath)
			if err := st.Save(); err != nil {
				return fmt.Errorf("save study: %w", err)
			}
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d/%d units succeeded (run %s, manifest %s)\n",
				m.Succeeded, len(m.Units), m.RunID, manifestPath)
		}
		if m.Failed > 0 {
			return fmt.Errorf("%d of %d units: %w", m.Failed, len(m.Units), pipeline.ErrUnitsFailed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runFlags.bind(runCmd.Flags())
	runCmd.Flags().IntVar(&runWorkers, "workers", 1, "number of units processed in parallel")
}
