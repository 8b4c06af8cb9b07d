package dtnsim

// contactgraph.go tracks an accumulated contact graph: an edge (a,b)
// exists once hosts a and b have ever been in direct radio contact.
// Reports use this to compute hop-distance statistics (§6
// Community/Popularity reports) via gonum's graph/path Dijkstra
// machinery, same approach as a static-topology shortest-path
// computation but over a graph built incrementally from runtime
// contacts instead of a graph declared once at startup.

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// ContactGraph accumulates an undirected graph of "have ever been in
// contact" edges across a run, for post-hoc topological analysis.
type ContactGraph struct {
	nodes map[int]simple.Node
	edges map[[2]int]bool
	built bool
	g     graph.Graph

	spCache map[int]path.Shortest
}

// CreateContactGraph is a constructor.
func CreateContactGraph() *ContactGraph {
	return &ContactGraph{
		nodes:   make(map[int]simple.Node),
		edges:   make(map[[2]int]bool),
		spCache: make(map[int]path.Shortest),
	}
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// RecordContact adds an edge between a and b, invalidating any cached
// shortest-path trees since the graph has changed.
func (cg *ContactGraph) RecordContact(a, b int) {
	key := edgeKey(a, b)
	if cg.edges[key] {
		return
	}
	cg.edges[key] = true
	if _, present := cg.nodes[a]; !present {
		cg.nodes[a] = simple.Node(a)
	}
	if _, present := cg.nodes[b]; !present {
		cg.nodes[b] = simple.Node(b)
	}
	cg.built = false
	cg.spCache = make(map[int]path.Shortest)
}

func (cg *ContactGraph) build() {
	if cg.built {
		return
	}
	ug := simple.NewWeightedUndirectedGraph(0, 0)
	for key := range cg.edges {
		ug.SetWeightedEdge(simple.WeightedEdge{F: cg.nodes[key[0]], T: cg.nodes[key[1]], W: 1.0})
	}
	cg.g = ug
	cg.built = true
}

func (cg *ContactGraph) spTreeFrom(from int) path.Shortest {
	cg.build()
	if tree, present := cg.spCache[from]; present {
		return tree
	}
	tree := path.DijkstraFrom(cg.nodes[from], cg.g)
	cg.spCache[from] = tree
	return tree
}

// HopDistance returns the shortest number of contact-graph hops
// between a and b, and whether a path exists at all.
func (cg *ContactGraph) HopDistance(a, b int) (int, bool) {
	if _, present := cg.nodes[a]; !present {
		return 0, false
	}
	if _, present := cg.nodes[b]; !present {
		return 0, false
	}
	tree := cg.spTreeFrom(a)
	nodeSeq, weight := tree.To(int64(b))
	if len(nodeSeq) == 0 || weight < 0 {
		return 0, false
	}
	return len(nodeSeq) - 1, true
}

// Diameter returns the longest shortest-hop distance between any pair
// of hosts that have a path between them in the contact graph, used by
// the community/popularity reports (§6) as a coarse reachability
// summary.
func (cg *ContactGraph) Diameter() int {
	cg.build()
	longest := 0
	for a := range cg.nodes {
		for b := range cg.nodes {
			if a >= b {
				continue
			}
			if d, ok := cg.HopDistance(a, b); ok && d > longest {
				longest = d
			}
		}
	}
	return longest
}
