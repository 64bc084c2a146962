package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/enrich-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set enrich configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "reference_file: %s\n", c.ReferenceFile)
		fmt.Fprintf(out, "reference_columns: id=%s description=%s members=%s size=%s\n",
			c.ReferenceColumns.ID, c.ReferenceColumns.Description, c.ReferenceColumns.Members, c.ReferenceColumns.Size)
		if c.UniverseFile != "" {
			fmt.Fprintf(out, "universe_file: %s\n", c.UniverseFile)
		}
		if c.UniverseColumn != "" {
			fmt.Fprintf(out, "universe_column: %s\n", c.UniverseColumn)
		}
		if c.DataRoot != "" {
			fmt.Fprintf(out, "data_root: %s\n", c.DataRoot)
		}
		fmt.Fprintf(out, "identifier_columns: %s\n", strings.Join(c.IdentifierColumns, ", "))
		fmt.Fprintf(out, "sheet_index: %d\n", c.SheetIndex)
		fmt.Fprintf(out, "id_prefix: %s\n", c.IDPrefix)
		fmt.Fprintf(out, "list_delimiter: %q\n", c.ListDelimiter)
		fmt.Fprintf(out, "top_k: %d\n", c.TopK)
		fmt.Fprintf(out, "label_width: %d\n", c.LabelWidth)
		if c.OutputDir != "" {
			fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		}
		fmt.Fprintf(out, "outputs: enrichment=%s degree=%s graph=%s\n", c.Outputs.Enrichment, c.Outputs.Degree, c.Outputs.Graph)
		fmt.Fprintf(out, "render: %t\n", c.Render)
		fmt.Fprintf(out, "workers: %d\n", c.Workers)
		fmt.Fprintf(out, "studies_dir: %s\n", c.StudiesDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func(min int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "reference_file":
		c.ReferenceFile = val
	case "reference_columns.id":
		c.ReferenceColumns.ID = val
	case "reference_columns.description":
		c.ReferenceColumns.Description = val
	case "reference_columns.members":
		c.ReferenceColumns.Members = val
	case "reference_columns.size":
		c.ReferenceColumns.Size = val
	case "universe_file":
		c.UniverseFile = val
	case "universe_column":
		c.UniverseColumn = val
	case "data_root":
		c.DataRoot = val
	case "identifier_columns":
		var cols []string
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cols = append(cols, s)
			}
		}
		if len(cols) == 0 {
			return fmt.Errorf("identifier_columns needs at least one column")
		}
		c.IdentifierColumns = cols
	case "sheet_index":
		i, err := atoi(1)
		if err != nil {
			return err
		}
		c.SheetIndex = i
	case "id_prefix":
		c.IDPrefix = val
	case "list_delimiter":
		c.ListDelimiter = val
	case "top_k":
		i, err := atoi(0)
		if err != nil {
			return err
		}
		c.TopK = i
	case "label_width":
		i, err := atoi(1)
		if err != nil {
			return err
		}
		c.LabelWidth = i
	case "output_dir":
		c.OutputDir = val
	case "outputs.enrichment":
		c.Outputs.Enrichment = val
	case "outputs.degree":
		c.Outputs.Degree = val
	case "outputs.graph":
		c.Outputs.Graph = val
	case "render":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for render: %v", val)
		}
		c.Render = b
	case "workers":
		i, err := atoi(1)
		if err != nil {
			return err
		}
		c.Workers = i
	case "studies_dir":
		c.StudiesDir = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
