// Package table reads delimited and spreadsheet files into a header plus rows.
package table

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// ErrUnsupported indicates no registered reader handles the file extension.
var ErrUnsupported = errors.New("unsupported table format")

// Options controls how files are read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// DefaultOptions reads the first sheet and all rows.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Table is an in-memory tabular file. Every row has len(Header) cells; short
// rows are padded with empty strings.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Index returns the position of the named column (trimmed, case-insensitive) or -1.
func (t *Table) Index(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Require checks that every named column exists.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s (have: %s)", t.Name, ErrMissingColumn,
			strings.Join(missing, ", "), strings.Join(t.Header, ", "))
	}
	return nil
}

// Column returns the values of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w: %s", t.Name, ErrMissingColumn, name)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Reader defines a table reader implementation.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opt Options) (*Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// Supported reports whether any registered reader handles the file.
func Supported(path string) bool {
	for _, r := range registry {
		if r.CanRead(path) {
			return true
		}
	}
	return false
}

// ReadFile selects a reader based on filename and loads the table.
func ReadFile(path string, opt Options) (*Table, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}

// pad normalizes a record to n cells, copying so callers may keep it.
func pad(rec []string, n int) []string {
	row := make([]string, n)
	copy(row, rec)
	return row
}
