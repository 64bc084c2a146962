package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/enrich-cli/internal/project"
	"github.com/KaramelBytes/enrich-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	listRuns      bool
	listStudyName string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List studies, or the run history of one study",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !listRuns {
			return listAllStudies(cmd)
		}
		dir, err := runsStudyDir()
		if err != nil {
			return err
		}
		s, err := project.LoadStudy(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(s.Runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		for _, r := range s.Runs {
			fmt.Fprintf(out, "- %s: %s %d/%d units ok (%s)\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Succeeded, r.Units, r.Root)
		}
		return nil
	},
}

// runsStudyDir picks the named study, or the one enclosing the working
// directory when no name is given.
func runsStudyDir() (string, error) {
	if listStudyName != "" {
		return resolveStudyDirByName(listStudyName)
	}
	dir, err := utils.FindStudyRoot("")
	if errors.Is(err, utils.ErrStudyNotFound) {
		return "", fmt.Errorf("--study is required when using --runs outside a study directory")
	}
	return dir, err
}

func listAllStudies(cmd *cobra.Command) error {
	root, err := defaultStudiesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		s, err := project.LoadStudy(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		if s.Description != "" {
			fmt.Fprintf(out, "- %s: %s (%d runs)\n", e.Name(), s.Description, len(s.Runs))
		} else {
			fmt.Fprintf(out, "- %s (%d runs)\n", e.Name(), len(s.Runs))
		}
		found = true
	}
	if !found {
		fmt.Fprintln(out, "(no studies)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listRuns, "runs", false, "list the run history of a study")
	listCmd.Flags().StringVarP(&listStudyName, "study", "p", "", "study name for --runs (default: the study enclosing the working directory)")
}
