package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/enrich-cli/internal/project"
	"github.com/KaramelBytes/enrich-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	initDescription string
	initReference   string
	initUniverse    string
	initDataRoot    string
)

var initCmd = &cobra.Command{
	Use:   "init <study-name>",
	Short: "Initialize a new enrichment study",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := defaultStudiesDir()
		if err != nil {
			return err
		}
		studyDir := filepath.Join(root, name)
		// Refuse to overwrite an existing study.
		if info, err := os.Stat(studyDir); err == nil && info.IsDir() {
			studyFile := filepath.Join(studyDir, "study.json")
			if _, err := os.Stat(studyFile); err == nil {
				return fmt.Errorf("study already exists at %s", studyDir)
			}
			entries, err := os.ReadDir(studyDir)
			if err != nil {
				return fmt.Errorf("inspect study directory: %w", err)
			}
			if len(entries) > 0 {
				return fmt.Errorf("directory %s already exists and is not empty; refusing to initialize study", studyDir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat study directory: %w", err)
		}

		ref, err := absOrEmpty(initReference)
		if err != nil {
			return err
		}
		uni, err := absOrEmpty(initUniverse)
		if err != nil {
			return err
		}
		data, err := absOrEmpty(initDataRoot)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(studyDir); err != nil {
			return err
		}
		s := project.NewStudy(name, initDescription, studyDir)
		s.Pin(ref, uni, data)
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Study initialized: %s\n", studyDir)
		return nil
	},
}

// absOrEmpty pins paths given on the command line to the current directory.
func absOrEmpty(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

func defaultStudiesDir() (string, error) {
	dir := ""
	if cfg != nil {
		dir = cfg.StudiesDir
	}
	if dir == "" || strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if dir == "" {
			dir = filepath.Join(home, ".enrich", "studies")
		} else {
			dir = strings.TrimPrefix(dir, "~")
			dir = strings.TrimPrefix(dir, string(os.PathSeparator))
			dir = strings.TrimPrefix(dir, "/")
			dir = filepath.Join(home, dir)
		}
	}
	dir = filepath.Clean(dir)
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func resolveStudyDirByName(name string) (string, error) {
	if name == "" {
		return "", errors.New("study name is required")
	}
	root, err := defaultStudiesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "study description")
	initCmd.Flags().StringVar(&initReference, "reference", "", "reference pathway table (CSV/TSV/XLSX)")
	initCmd.Flags().StringVar(&initUniverse, "universe", "", "reference universe list (text or table)")
	initCmd.Flags().StringVar(&initDataRoot, "data", "", "data root holding observed result tables")
}
