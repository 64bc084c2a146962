package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/enrich-cli/internal/overlap"
)

// wistia is the node fill ramp, low to high significance.
var wistia = [][3]float64{
	{0xe4, 0xff, 0x7a},
	{0xff, 0xe8, 0x1a},
	{0xff, 0xbd, 0x00},
	{0xff, 0xa0, 0x00},
	{0xfc, 0x7f, 0x00},
}

// WriteDOT renders the graph as Graphviz input for neato's Kamada-Kawai mode.
// Node area follows RenderSize (points squared), fill follows Color normalized
// over the graph, edge width and colour follow the shared-hit count.
func WriteDOT(w io.Writer, g *overlap.Graph) error {
	nodes := g.Nodes()
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, n := range nodes {
		lo = math.Min(lo, n.Color)
		hi = math.Max(hi, n.Color)
	}
	var b strings.Builder
	b.WriteString("graph enrichment {\n")
	b.WriteString("  layout=neato;\n  mode=KK;\n  overlap=false;\n")
	b.WriteString("  node [shape=circle, style=filled, color=\"darkorange\", penwidth=1.5, fontsize=6, fontcolor=\"#404040\", fixedsize=true];\n")
	for _, n := range nodes {
		diameter := math.Sqrt(n.RenderSize) / 72
		fmt.Fprintf(&b, "  %s [label=%s, width=%.3f, fillcolor=\"%s\", tooltip=%s];\n",
			quote(n.ID), quote(n.Label), diameter, ramp(n.Color, lo, hi),
			quote(fmt.Sprintf("%d hits, p=%s", n.NumHits, FormatPValue(n.PValue))))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %s -- %s [penwidth=%d, color=\"%s\", weight=%d];\n",
			quote(e.A), quote(e.B), e.Weight, overlap.EdgeColor(e.Weight), e.Weight)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ramp interpolates the fill colour for v within [lo, hi].
func ramp(v, lo, hi float64) string {
	t := 0.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(wistia)-1)
	i := int(math.Floor(pos))
	if i >= len(wistia)-1 {
		i = len(wistia) - 2
	}
	f := pos - float64(i)
	var c [3]int
	for k := 0; k < 3; k++ {
		c[k] = int(math.Round(wistia[i][k]*(1-f) + wistia[i+1][k]*f))
	}
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// quote produces a DOT string literal; newlines become centered line breaks.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
