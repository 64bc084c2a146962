package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/enrich-cli/internal/compound"
	"github.com/KaramelBytes/enrich-cli/internal/table"
)

// ReadObserved extracts the observed compound set from one unit table. Every
// listed identifier column must exist; their values are pooled before
// extraction.
func ReadObserved(path string, columns []string, topt table.Options, eopt compound.ExtractOptions) (compound.Set, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no identifier columns configured")
	}
	t, err := table.ReadFile(path, topt)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	var raw []string
	for _, c := range columns {
		vals, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		raw = append(raw, vals...)
	}
	return compound.Extract(raw, eopt), nil
}

// LoadUniverse reads the reference universe. Table files contribute the
// values of column (the first column when empty); any other file is read as
// one value per line, skipping blank lines and # comments. Values pass
// through the same extraction as observed units.
func LoadUniverse(path, column string, topt table.Options, eopt compound.ExtractOptions) (compound.Set, error) {
	if path == "" {
		return compound.Set{}, nil
	}
	if table.Supported(path) {
		t, err := table.ReadFile(path, topt)
		if err != nil {
			return nil, fmt.Errorf("read universe: %w", err)
		}
		if len(t.Header) == 0 {
			return compound.Set{}, nil
		}
		if column == "" {
			column = t.Header[0]
		}
		vals, err := t.Column(column)
		if err != nil {
			return nil, fmt.Errorf("read universe: %w", err)
		}
		return compound.Extract(vals, eopt), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe: %w", err)
	}
	defer f.Close()
	var raw []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw = append(raw, strings.Trim(line, `'"`))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	return compound.Extract(raw, eopt), nil
}
