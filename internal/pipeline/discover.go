package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/enrich-cli/internal/table"
)

// ErrNoUnits is returned when discovery finds nothing to process.
var ErrNoUnits = errors.New("no observed-subset files found")

// Unit is one observed-subset input file.
type Unit struct {
	Path string
	// Rel is Path relative to the discovery root.
	Rel string
}

// DiscoverOptions controls which files count as units.
type DiscoverOptions struct {
	// ExcludeNames are base names never treated as units (the tool's own outputs).
	ExcludeNames []string
	// ExcludePaths are files or directories skipped entirely (reference,
	// universe, an output directory nested inside the root).
	ExcludePaths []string
}

// Discover walks root recursively and returns every readable table file in
// lexical path order. A root that is a file yields that file alone. Hidden
// directories are skipped.
func Discover(root string, opt DiscoverOptions) ([]Unit, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat data root: %w", err)
	}
	if !info.IsDir() {
		return []Unit{{Path: root, Rel: filepath.Base(root)}}, nil
	}
	names := make(map[string]struct{}, len(opt.ExcludeNames))
	for _, n := range opt.ExcludeNames {
		if n != "" {
			names[strings.ToLower(n)] = struct{}{}
		}
	}
	skip := make(map[string]struct{}, len(opt.ExcludePaths))
	for _, p := range opt.ExcludePaths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = struct{}{}
		}
	}

	var units []Unit
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		abs, _ := filepath.Abs(path)
		if _, ok := skip[abs]; ok {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := names[strings.ToLower(d.Name())]; ok {
			return nil
		}
		if !table.Supported(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		units = append(units, Unit{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })
	if len(units) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoUnits)
	}
	return units, nil
}

// OutputDirs assigns every unit its output directory. Outputs go next to the
// unit (or under outRoot, mirroring the layout relative to the discovery
// root); when a directory holds several units each gets a subdirectory named
// after the file stem so their outputs do not overwrite each other.
func OutputDirs(units []Unit, outRoot string) []string {
	perDir := map[string]int{}
	for _, u := range units {
		perDir[filepath.Dir(u.Rel)]++
	}
	dirs := make([]string, len(units))
	for i, u := range units {
		base := filepath.Dir(u.Path)
		if outRoot != "" {
			base = filepath.Join(outRoot, filepath.Dir(u.Rel))
		}
		if perDir[filepath.Dir(u.Rel)] > 1 {
			stem := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
			base = filepath.Join(base, stem)
		}
		dirs[i] = base
	}
	return dirs
}
