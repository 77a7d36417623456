// Package overlay manages the graph of ITS channels between nodes: peer
// introduction to bootstrap new channels without depending on network
// topology, and personalized PageRank trust scoring for Sybil resistance.
package overlay

import (
	"errors"
	"math"
	"sort"
)

// Graph is a sparse adjacency representation of the ITS channel overlay.
type Graph struct {
	adj     map[int]map[int]struct{}
	weights map[[2]int]float64
}

// NewGraph creates an empty overlay graph.
func NewGraph() *Graph {
	return &Graph{
		adj:     make(map[int]map[int]struct{}),
		weights: make(map[[2]int]float64),
	}
}

// AddNode registers a node with no edges, if not already present.
func (g *Graph) AddNode(id int) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[int]struct{})
	}
}

// AddEdge adds an undirected weighted edge between a and b, creating
// either endpoint if absent. Self-loops (a == b) are rejected silently.
func (g *Graph) AddEdge(a, b int, weight float64) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
	g.weights[[2]int{a, b}] = weight
	g.weights[[2]int{b, a}] = weight
}

// RemoveEdge deletes the edge between a and b, if present.
func (g *Graph) RemoveEdge(a, b int) {
	delete(g.adj[a], b)
	delete(g.adj[b], a)
	delete(g.weights, [2]int{a, b})
	delete(g.weights, [2]int{b, a})
}

// Neighbors returns id's neighbor set.
func (g *Graph) Neighbors(id int) map[int]struct{} {
	return g.adj[id]
}

// Degree reports how many neighbors id has.
func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

// OutWeight sums the weights of id's outgoing edges, defaulting to 1.0 per
// edge when unset.
func (g *Graph) OutWeight(id int) float64 {
	var total float64
	for n := range g.adj[id] {
		total += g.weightOrDefault(id, n)
	}
	return total
}

func (g *Graph) weightOrDefault(a, b int) float64 {
	if w, ok := g.weights[[2]int{a, b}]; ok {
		return w
	}
	return 1.0
}

// Nodes returns the set of all node IDs in the graph.
func (g *Graph) Nodes() []int {
	nodes := make([]int, 0, len(g.adj))
	for n := range g.adj {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	return nodes
}

// NNodes reports the number of nodes.
func (g *Graph) NNodes() int { return len(g.adj) }

// NEdges reports the number of undirected edges.
func (g *Graph) NEdges() int {
	total := 0
	for _, ns := range g.adj {
		total += len(ns)
	}
	return total / 2
}

// FromAdjacency builds a Graph from an adjacency map, with unit weights.
func FromAdjacency(adj map[int][]int) *Graph {
	g := NewGraph()
	for node, neighbors := range adj {
		g.AddNode(node)
		for _, n := range neighbors {
			g.AddEdge(node, n, 1.0)
		}
	}
	return g
}

// PersonalizedPageRank computes trust scores from seed's perspective via
// power iteration over the sparse adjacency. O(N * E * iterations).
//
// Dangling mass (nodes with zero out-weight) is intentionally NOT
// redistributed uniformly across the graph: doing so would let a Sybil
// cluster of disconnected or low-degree nodes siphon trust mass simply by
// existing. Trust held by a node with zero out-weight is dropped at each
// iteration rather than carried forward.
func PersonalizedPageRank(seed int, g *Graph, d float64, iterations int) map[int]float64 {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return map[int]float64{}
	}

	trust := make(map[int]float64, len(nodes))
	for _, n := range nodes {
		trust[n] = 0.0
	}
	trust[seed] = 1.0

	for iter := 0; iter < iterations; iter++ {
		newTrust := make(map[int]float64, len(nodes))
		for _, n := range nodes {
			newTrust[n] = 0.0
		}

		for _, u := range nodes {
			outW := g.OutWeight(u)
			if outW == 0 {
				continue
			}
			for v := range g.Neighbors(u) {
				w := g.weightOrDefault(u, v)
				newTrust[v] += d * trust[u] * w / outW
			}
		}

		for _, n := range nodes {
			if n == seed {
				newTrust[n] += 1 - d
			}
		}

		trust = newTrust
	}

	return trust
}

// TrustWeightedAccept reports whether attesting nodes collectively hold
// more than threshold (default 2/3) of the total trust mass — a
// trust-weighted BFT acceptance rule.
func TrustWeightedAccept(attestations []int, trustScores map[int]float64, threshold float64) bool {
	var totalTrust float64
	for _, v := range trustScores {
		totalTrust += v
	}
	if totalTrust == 0 {
		return false
	}
	var attestingTrust float64
	for _, a := range attestations {
		attestingTrust += trustScores[a]
	}
	return attestingTrust > threshold*totalTrust
}

// DefaultAcceptThreshold is the standard BFT trust fraction, 2/3.
const DefaultAcceptThreshold = 2.0 / 3.0

// ErrNoPSKComponents signals PeerIntroduction.GeneratePSK was called with
// no components to combine.
var ErrNoPSKComponents = errors.New("overlay: need at least one PSK component")

// PeerIntroduction implements multi-introducer PSK generation: m
// introducers each generate a PSK component over independent ITS
// channels, and their XOR combination becomes the new pairwise PSK.
type PeerIntroduction struct {
	Graph          *Graph
	MinIntroducers int
}

// NewPeerIntroduction creates a PeerIntroduction requiring at least
// minIntroducers mutual contacts before two nodes can be introduced.
func NewPeerIntroduction(g *Graph, minIntroducers int) *PeerIntroduction {
	return &PeerIntroduction{Graph: g, MinIntroducers: minIntroducers}
}

// FindMutualContacts returns the nodes connected to both a and c.
func (p *PeerIntroduction) FindMutualContacts(a, c int) []int {
	var out []int
	for n := range p.Graph.Neighbors(a) {
		if _, ok := p.Graph.Neighbors(c)[n]; ok {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// CanIntroduce reports whether enough mutual contacts exist to introduce
// a and c.
func (p *PeerIntroduction) CanIntroduce(a, c int) bool {
	return len(p.FindMutualContacts(a, c)) >= p.MinIntroducers
}

// GeneratePSK XOR-combines PSK components from independent introducers.
// All components must be the same length; the result has that length.
func (p *PeerIntroduction) GeneratePSK(components [][]byte) ([]byte, error) {
	if len(components) == 0 {
		return nil, ErrNoPSKComponents
	}
	result := make([]byte, len(components[0]))
	for _, comp := range components {
		for i := range result {
			result[i] ^= comp[i]
		}
	}
	return result, nil
}

// MutualContactFinder identifies common neighbors for peer introductions,
// ranked by reliability.
type MutualContactFinder struct {
	Graph *Graph
}

// NewMutualContactFinder wraps a graph for mutual-contact lookups.
func NewMutualContactFinder(g *Graph) *MutualContactFinder {
	return &MutualContactFinder{Graph: g}
}

// FindForPair returns mutual contacts of a and c, sorted by degree
// (descending — a higher-degree node is better connected and presumed
// more reliable as an introducer), capped at 2*minCount candidates.
func (f *MutualContactFinder) FindForPair(a, c, minCount int) []int {
	var mutual []int
	for n := range f.Graph.Neighbors(a) {
		if _, ok := f.Graph.Neighbors(c)[n]; ok {
			mutual = append(mutual, n)
		}
	}
	sort.Slice(mutual, func(i, j int) bool {
		di, dj := f.Graph.Degree(mutual[i]), f.Graph.Degree(mutual[j])
		if di != dj {
			return di > dj
		}
		return mutual[i] < mutual[j]
	})
	limit := minCount * 2
	if limit < len(mutual) {
		mutual = mutual[:limit]
	}
	return mutual
}

// GraphMonitor watches overlay graph health: connectivity and target
// degree.
type GraphMonitor struct {
	Graph *Graph
}

// NewGraphMonitor wraps a graph for health monitoring.
func NewGraphMonitor(g *Graph) *GraphMonitor {
	return &GraphMonitor{Graph: g}
}

// MinDegree returns the minimum degree across all nodes, or 0 if empty.
func (m *GraphMonitor) MinDegree() int {
	nodes := m.Graph.Nodes()
	if len(nodes) == 0 {
		return 0
	}
	min := m.Graph.Degree(nodes[0])
	for _, n := range nodes[1:] {
		if d := m.Graph.Degree(n); d < min {
			min = d
		}
	}
	return min
}

// TargetDegree is the connectivity target: max(3, ceil(log2(N)) + 1), or 0
// for a graph with at most one node.
func (m *GraphMonitor) TargetDegree() int {
	n := m.Graph.NNodes()
	if n <= 1 {
		return 0
	}
	target := int(math.Ceil(math.Log2(float64(n)))) + 1
	if target < 3 {
		return 3
	}
	return target
}

// UnderconnectedNodes returns nodes whose degree is below TargetDegree.
func (m *GraphMonitor) UnderconnectedNodes() []int {
	target := m.TargetDegree()
	var out []int
	for _, n := range m.Graph.Nodes() {
		if m.Graph.Degree(n) < target {
			out = append(out, n)
		}
	}
	return out
}

// IsConnected reports whether the graph is a single connected component.
func (m *GraphMonitor) IsConnected() bool {
	if m.Graph.NNodes() == 0 {
		return true
	}
	nodes := m.Graph.Nodes()
	visited := make(map[int]struct{}, len(nodes))
	stack := []int{nodes[0]}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}
		for n := range m.Graph.Neighbors(node) {
			if _, ok := visited[n]; !ok {
				stack = append(stack, n)
			}
		}
	}
	return len(visited) == m.Graph.NNodes()
}
