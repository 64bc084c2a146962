package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Inputs
	ReferenceFile     string           `mapstructure:"reference_file" yaml:"reference_file"`
	ReferenceColumns  ReferenceColumns `mapstructure:"reference_columns" yaml:"reference_columns"`
	UniverseFile      string           `mapstructure:"universe_file" yaml:"universe_file"`
	UniverseColumn    string           `mapstructure:"universe_column" yaml:"universe_column"`
	DataRoot          string           `mapstructure:"data_root" yaml:"data_root"`
	IdentifierColumns []string         `mapstructure:"identifier_columns" yaml:"identifier_columns"`
	SheetIndex        int              `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Identifier recognition
	IDPrefix      string `mapstructure:"id_prefix" yaml:"id_prefix"`
	ListDelimiter string `mapstructure:"list_delimiter" yaml:"list_delimiter"`

	// Graph
	TopK       int `mapstructure:"top_k" yaml:"top_k"`
	LabelWidth int `mapstructure:"label_width" yaml:"label_width"`

	// Outputs
	OutputDir string      `mapstructure:"output_dir" yaml:"output_dir"`
	Outputs   OutputNames `mapstructure:"outputs" yaml:"outputs"`
	Render    bool        `mapstructure:"render" yaml:"render"`

	// Execution
	Workers int `mapstructure:"workers" yaml:"workers"`

	StudiesDir string `mapstructure:"studies_dir" yaml:"studies_dir"`
}

// ReferenceColumns names the columns of the reference (pathway) table.
type ReferenceColumns struct {
	ID          string `mapstructure:"id" yaml:"id"`
	Description string `mapstructure:"description" yaml:"description"`
	Members     string `mapstructure:"members" yaml:"members"`
	Size        string `mapstructure:"size" yaml:"size"`
}

// OutputNames are the per-unit output file names.
type OutputNames struct {
	Enrichment string `mapstructure:"enrichment" yaml:"enrichment"`
	Degree     string `mapstructure:"degree" yaml:"degree"`
	Graph      string `mapstructure:"graph" yaml:"graph"`
}

// Validate checks configuration for issues and returns warnings.
func (c *Global) Validate() []string {
	var warnings []string
	if c.TopK <= 0 {
		warnings = append(warnings, fmt.Sprintf("top_k %d disables truncation; every significant group becomes a graph node", c.TopK))
	}
	if c.LabelWidth <= 0 {
		warnings = append(warnings, fmt.Sprintf("label_width %d is not positive; the default of 30 is used", c.LabelWidth))
	}
	if c.Workers < 1 {
		warnings = append(warnings, fmt.Sprintf("workers %d is below 1; units run sequentially", c.Workers))
	}
	if c.IDPrefix == "" {
		warnings = append(warnings, "id_prefix is empty; the default prefix C is used")
	}
	if len(c.IdentifierColumns) == 0 {
		warnings = append(warnings, "identifier_columns is empty; observed units cannot be read")
	}
	return warnings
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.enrich/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".enrich")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is read into the environment first;
// variables already set are left alone.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("reference_file", "psat.csv")
	v.SetDefault("reference_columns.id", "ID")
	v.SetDefault("reference_columns.description", "Description")
	v.SetDefault("reference_columns.members", "Compounds")
	v.SetDefault("reference_columns.size", "Num")
	v.SetDefault("universe_file", "")
	v.SetDefault("universe_column", "")
	v.SetDefault("data_root", "")
	v.SetDefault("identifier_columns", []string{"External Identifier"})
	v.SetDefault("sheet_index", 1)
	v.SetDefault("id_prefix", "C")
	v.SetDefault("list_delimiter", ", ")
	v.SetDefault("top_k", 15)
	v.SetDefault("label_width", 30)
	v.SetDefault("output_dir", "")
	v.SetDefault("outputs.enrichment", "enrichment.csv")
	v.SetDefault("outputs.degree", "degree.csv")
	v.SetDefault("outputs.graph", "enrichment.dot")
	v.SetDefault("render", true)
	v.SetDefault("workers", 1)
	v.SetDefault("studies_dir", "")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".enrich")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve studies_dir default: ~/.enrich/studies
	if c.StudiesDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.StudiesDir = filepath.Join(home, ".enrich", "studies")
	}
	return &c, nil
}
