// Package overlap builds the co-occurrence graph of significant groups: two
// groups are linked when their observed hit sets intersect.
package overlap

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/KaramelBytes/enrich-cli/internal/compound"
	"github.com/KaramelBytes/enrich-cli/internal/enrich"
)

const (
	DefaultTopK       = 15
	DefaultLabelWidth = 30

	sizePerHit  = 50
	renderScale = 10
)

// Options controls graph construction.
type Options struct {
	TopK       int
	LabelWidth int
}

// DefaultOptions returns the top-15 / 30-column settings.
func DefaultOptions() Options {
	return Options{TopK: DefaultTopK, LabelWidth: DefaultLabelWidth}
}

// Node is one group in the graph. Nodes are keyed by group ID; Label is for
// display only and may repeat across nodes.
type Node struct {
	ID          string
	Label       string
	Description string
	Hits        []string
	NumHits     int
	PValue      float64
	// Size is NumHits*50; RenderSize scales it again for plotting.
	Size       float64
	RenderSize float64
	// Color is -log10(PValue).
	Color float64
}

// Edge links two nodes sharing Weight observed hits. A precedes B in node order.
type Edge struct {
	A, B   string
	Weight int
	Shared []string
}

// Graph is an undirected, weighted graph without self-loops or parallel
// edges. Topology lives in a gonum simple graph whose node IDs are positions
// in node insertion order; display attributes are kept alongside.
type Graph struct {
	g     *simple.WeightedUndirectedGraph
	nodes []Node
	index map[string]int
	edges []Edge
	// edge maps an ordered position pair to its index in edges.
	edge map[[2]int]int
}

func newGraph() *Graph {
	return &Graph{
		g:     simple.NewWeightedUndirectedGraph(0, 0),
		index: map[string]int{},
		edge:  map[[2]int]int{},
	}
}

// Build adds one node per result (in order, truncated to opt.TopK) and an
// edge for every pair whose HitsSample intersect. Results are expected to be
// ranked and filtered to NumSample > 0 by the caller.
func Build(results []enrich.Result, opt Options) *Graph {
	if opt.LabelWidth <= 0 {
		opt.LabelWidth = DefaultLabelWidth
	}
	if opt.TopK > 0 && len(results) > opt.TopK {
		results = results[:opt.TopK]
	}
	g := newGraph()
	for _, r := range results {
		g.addNode(Node{
			ID:          r.Group.ID,
			Label:       FormatLabel(r.Group.Description, opt.LabelWidth),
			Description: r.Group.Description,
			Hits:        r.HitsSample,
			NumHits:     r.NumSample,
			PValue:      r.PValue,
			Size:        float64(r.NumSample * sizePerHit),
			RenderSize:  float64(r.NumSample * sizePerHit * renderScale),
			Color:       colorScalar(r.PValue),
		})
	}
	for i := 0; i < len(g.nodes); i++ {
		for j := i + 1; j < len(g.nodes); j++ {
			shared := compound.IntersectSorted(g.nodes[i].Hits, g.nodes[j].Hits)
			if len(shared) > 0 {
				g.addEdge(i, j, shared)
			}
		}
	}
	return g
}

// colorScalar is -log10(p), with p = 0 clamped to the smallest positive float.
func colorScalar(p float64) float64 {
	if p <= 0 {
		p = math.SmallestNonzeroFloat64
	}
	return -math.Log10(p)
}

func (g *Graph) addNode(n Node) {
	if _, ok := g.index[n.ID]; ok {
		return
	}
	hits := append([]string(nil), n.Hits...)
	sort.Strings(hits)
	n.Hits = hits
	pos := len(g.nodes)
	g.index[n.ID] = pos
	g.nodes = append(g.nodes, n)
	g.g.AddNode(simple.Node(pos))
}

func (g *Graph) addEdge(i, j int, shared []string) {
	if i == j {
		return
	}
	if j < i {
		i, j = j, i
	}
	if _, ok := g.edge[[2]int{i, j}]; ok {
		return
	}
	g.g.SetWeightedEdge(g.g.NewWeightedEdge(simple.Node(i), simple.Node(j), float64(len(shared))))
	g.edge[[2]int{i, j}] = len(g.edges)
	g.edges = append(g.edges, Edge{A: g.nodes[i].ID, B: g.nodes[j].ID, Weight: len(shared), Shared: shared})
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node looks up a node by group ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Edge returns the edge between two group IDs, if any.
func (g *Graph) Edge(a, b string) (Edge, bool) {
	i, ok1 := g.index[a]
	j, ok2 := g.index[b]
	if !ok1 || !ok2 || !g.g.HasEdgeBetween(int64(i), int64(j)) {
		return Edge{}, false
	}
	if j < i {
		i, j = j, i
	}
	return g.edges[g.edge[[2]int{i, j}]], true
}

// Degree is the number of edges incident to the node.
func (g *Graph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return g.g.From(int64(i)).Len()
}

// Neighbors returns the IDs adjacent to id, in node insertion order.
func (g *Graph) Neighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	var pos []int
	for it := g.g.From(int64(i)); it.Next(); {
		pos = append(pos, int(it.Node().ID()))
	}
	sort.Ints(pos)
	out := make([]string, len(pos))
	for k, j := range pos {
		out[k] = g.nodes[j].ID
	}
	return out
}

// Weight returns the shared-hit count between two group IDs, or 0 when they
// are not adjacent.
func (g *Graph) Weight(a, b string) int {
	i, ok1 := g.index[a]
	j, ok2 := g.index[b]
	if !ok1 || !ok2 {
		return 0
	}
	w, ok := g.g.Weight(int64(i), int64(j))
	if !ok || i == j {
		return 0
	}
	return int(w)
}
