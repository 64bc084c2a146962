// Package annotation loads the reference groups (pathways) that partition the
// compound universe.
package annotation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/enrich-cli/internal/compound"
	"github.com/KaramelBytes/enrich-cli/internal/table"
)

// Group is one row of the reference table.
type Group struct {
	ID          string
	Description string
	Members     compound.Set
	// UniverseSize is the supplied group total (K). It is not derived from Members.
	UniverseSize int
}

// Columns names the reference table columns. ID is optional.
type Columns struct {
	ID          string
	Description string
	Members     string
	Size        string
}

// DefaultColumns matches the pathway summary export (psat.csv).
func DefaultColumns() Columns {
	return Columns{ID: "ID", Description: "Description", Members: "Compounds", Size: "Num"}
}

// Load converts table rows into groups, in row order.
//
// Member lists that fail to parse become empty sets. A missing required
// column or a non-integer size is an error. Rows without a usable ID (no ID
// column, empty cell, or a repeated value) are keyed row-<n>.
func Load(t *table.Table, cols Columns) ([]Group, error) {
	if err := t.Require(cols.Description, cols.Members, cols.Size); err != nil {
		return nil, err
	}
	descIdx := t.Index(cols.Description)
	memIdx := t.Index(cols.Members)
	sizeIdx := t.Index(cols.Size)
	idIdx := -1
	if cols.ID != "" {
		idIdx = t.Index(cols.ID)
	}

	groups := make([]Group, 0, len(t.Rows))
	seen := make(map[string]struct{}, len(t.Rows))
	for i, row := range t.Rows {
		size, err := parseSize(row[sizeIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: column %s: %w", t.Name, i+1, cols.Size, err)
		}
		id := ""
		if idIdx >= 0 {
			id = strings.TrimSpace(row[idIdx])
		}
		if _, dup := seen[id]; id == "" || dup {
			id = fmt.Sprintf("row-%d", i+1)
		}
		seen[id] = struct{}{}
		groups = append(groups, Group{
			ID:           id,
			Description:  row[descIdx],
			Members:      compound.ParseList(row[memIdx]),
			UniverseSize: size,
		})
	}
	return groups, nil
}

// LoadFile reads and loads a reference table from disk.
func LoadFile(path string, cols Columns, opt table.Options) ([]Group, error) {
	t, err := table.ReadFile(path, opt)
	if err != nil {
		return nil, fmt.Errorf("read reference table: %w", err)
	}
	return Load(t, cols)
}

// TotalUniverse sums UniverseSize over all groups (N).
func TotalUniverse(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += g.UniverseSize
	}
	return n
}

// parseSize accepts integers and integral floats ("12", "12.0", "1e2").
func parseSize(s string) (int, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, fmt.Errorf("empty size")
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return int(f), nil
}
