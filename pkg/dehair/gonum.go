package dehair

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ToGonum converts g into an undirected simple graph. Node i of the result
// is g.Nodes[i]. Parallel links collapse and self-loops are dropped.
func ToGonum(g *Graph) (*simple.UndirectedGraph, []string) {
	ug := simple.NewUndirectedGraph()
	ids := make([]string, len(g.Nodes))
	index := make(map[string]int64, len(g.Nodes))

	for i, n := range g.Nodes {
		ids[i] = n.ID
		index[n.ID] = int64(i)
		ug.AddNode(simple.Node(int64(i)))
	}

	for _, l := range g.Links {
		from, ok := index[l.Source]
		if !ok {
			continue
		}
		to, ok := index[l.Target]
		if !ok || from == to {
			continue
		}
		if !ug.HasEdgeBetween(from, to) {
			ug.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	return ug, ids
}

// Components returns the connected components of g as sorted id lists,
// largest first.
func Components(g *Graph) [][]string {
	ug, ids := ToGonum(g)
	comps := topo.ConnectedComponents(ug)

	out := make([][]string, 0, len(comps))
	for _, c := range comps {
		members := make([]string, len(c))
		for i, n := range c {
			members[i] = ids[n.ID()]
		}
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}

// NodeRank is a node with its PageRank score.
type NodeRank struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Type  Role    `json:"type"`
	Rank  float64 `json:"rank"`
}

// RankCalculator computes PageRank over the undirected structure of a graph.
type RankCalculator struct {
	dampingFactor float64
	tolerance     float64
}

// NewRankCalculator returns a calculator with damping 0.85 and tolerance 1e-6.
func NewRankCalculator() *RankCalculator {
	return &RankCalculator{
		dampingFactor: 0.85,
		tolerance:     1e-6,
	}
}

// WithDampingFactor sets the damping factor.
func (rc *RankCalculator) WithDampingFactor(factor float64) *RankCalculator {
	rc.dampingFactor = factor
	return rc
}

// WithTolerance sets the convergence tolerance.
func (rc *RankCalculator) WithTolerance(tolerance float64) *RankCalculator {
	rc.tolerance = tolerance
	return rc
}

// Rank returns every node of g ordered by PageRank, highest first.
func (rc *RankCalculator) Rank(g *Graph) ([]NodeRank, error) {
	if len(g.Nodes) == 0 {
		return []NodeRank{}, nil
	}
	if rc.dampingFactor <= 0 || rc.dampingFactor >= 1 {
		return nil, fmt.Errorf("%w: damping factor must be in (0, 1), got %v", ErrInvalidArgument, rc.dampingFactor)
	}

	ug, _ := ToGonum(g)
	scores := network.PageRank(toDirected(ug), rc.dampingFactor, rc.tolerance)

	ranks := make([]NodeRank, len(g.Nodes))
	for i, n := range g.Nodes {
		ranks[i] = NodeRank{ID: n.ID, Label: n.Label, Type: n.Type, Rank: scores[int64(i)]}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Rank > ranks[j].Rank
	})
	return ranks, nil
}

// toDirected mirrors each undirected edge in both directions.
func toDirected(ug *simple.UndirectedGraph) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	nodes := ug.Nodes()
	for nodes.Next() {
		dg.AddNode(nodes.Node())
	}
	edges := ug.Edges()
	for edges.Next() {
		e := edges.Edge()
		dg.SetEdge(simple.Edge{F: e.From(), T: e.To()})
		dg.SetEdge(simple.Edge{F: e.To(), T: e.From()})
	}
	return dg
}
