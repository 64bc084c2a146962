package overlap

import "sort"

// DegreeRecord summarizes one node's connectivity.
type DegreeRecord struct {
	ID     string
	Label  string
	Degree int
	// Neighbors are the display labels of adjacent nodes, in node order.
	Neighbors []string
}

// Degrees returns one record per node in node insertion order.
func (g *Graph) Degrees() []DegreeRecord {
	out := make([]DegreeRecord, 0, len(g.nodes))
	for _, n := range g.nodes {
		ids := g.Neighbors(n.ID)
		labels := make([]string, len(ids))
		for k, id := range ids {
			labels[k] = g.nodes[g.index[id]].Label
		}
		out = append(out, DegreeRecord{ID: n.ID, Label: n.Label, Degree: len(ids), Neighbors: labels})
	}
	return out
}

// SortByDegree orders records by descending degree; ties keep node order.
func SortByDegree(records []DegreeRecord) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Degree > records[j].Degree })
}

// EdgeColor maps a shared-hit count to the plot's edge palette.
func EdgeColor(weight int) string {
	switch {
	case weight >= 5:
		return "#C40C0C"
	case weight == 4:
		return "#FF6500"
	case weight == 3:
		return "#FF8A08"
	case weight == 2:
		return "#ebb134"
	default:
		return "#f2de9d"
	}
}
