package dehair

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(src, dst string) Edge {
	return Edge{Source: src, SourceLabel: src, Target: dst, TargetLabel: dst, Relation: "rel", Score: 1}
}

func path(n int) []Edge {
	edges := make([]Edge, 0, n)
	for i := 1; i < n; i++ {
		edges = append(edges, edge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1)))
	}
	return edges
}

func cycle(n int) []Edge {
	edges := path(n)
	return append(edges, edge(fmt.Sprintf("n%d", n), "n1"))
}

func nodeIDs(g *Graph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	sort.Strings(ids)
	return ids
}

func dehairOpts(cap int) Options {
	return Options{Dehair: true, MaxIterations: cap}
}

func TestBuild_DegreeCountsDistinctNeighbours(t *testing.T) {
	g := Build([]Edge{
		edge("a", "b"),
		edge("a", "b"),
		edge("b", "a"),
		edge("b", "c"),
	})

	require.Len(t, g.Links, 4)
	a, _ := g.Node("a")
	b, _ := g.Node("b")
	c, _ := g.Node("c")
	assert.Equal(t, 1, a.Degree)
	assert.Equal(t, 2, b.Degree)
	assert.Equal(t, 1, c.Degree)
}

func TestBuild_RolePromotionIsMonotone(t *testing.T) {
	g := Build([]Edge{
		{Source: "x", SourceLabel: "first", SourceRole: RoleTrain, Target: "y", TargetRole: RoleTrain},
		{Source: "x", SourceLabel: "second", SourceRole: RoleTest, Target: "z", TargetRole: RoleTrain},
		{Source: "x", SourceLabel: "third", SourceRole: RoleTrain, Target: "y", TargetRole: RoleTrain},
	})

	x, ok := g.Node("x")
	require.True(t, ok)
	assert.Equal(t, RoleTest, x.Type)
	assert.Equal(t, "first", x.Label)

	y, _ := g.Node("y")
	assert.Equal(t, RoleTrain, y.Type)
}

func TestReduce_RawMode(t *testing.T) {
	res, err := Reduce(path(5), Options{})
	require.NoError(t, err)

	assert.Len(t, res.Graph.Nodes, 5)
	assert.Len(t, res.Graph.Links, 4)
	assert.Equal(t, Stats{
		OriginalNodes: 5, OriginalLinks: 4,
		FilteredNodes: 5, FilteredLinks: 4,
	}, res.Stats)
}

func TestReduce_IsolatedSurvivor(t *testing.T) {
	res, err := Reduce([]Edge{edge("A", "B"), edge("B", "C")}, dehairOpts(100))
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, nodeIDs(res.Graph))
	assert.Empty(t, res.Graph.Links)
	assert.Equal(t, 0, res.Graph.Nodes[0].Degree)
	assert.Equal(t, 1, res.Stats.Iterations)
	assert.Equal(t, 2, res.Stats.RemovedNodes)
	assert.Equal(t, 2, res.Stats.RemovedLinks)
	assert.False(t, res.Stats.Capped)
	assert.True(t, res.Stats.Dehaired)
}

func TestReduce_CycleIsFixedPoint(t *testing.T) {
	for _, n := range []int{3, 4, 7} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			res, err := Reduce(cycle(n), dehairOpts(100))
			require.NoError(t, err)

			assert.Equal(t, n, res.Stats.FilteredNodes)
			assert.Equal(t, 0, res.Stats.RemovedNodes)
			assert.Equal(t, 0, res.Stats.Iterations)
			for _, node := range res.Graph.Nodes {
				assert.Equal(t, 2, node.Degree)
			}
		})
	}
}

func TestReduce_PathPeelsInward(t *testing.T) {
	tests := []struct {
		n          int
		remaining  int
		iterations int
	}{
		{n: 2, remaining: 0, iterations: 1},
		{n: 3, remaining: 1, iterations: 1},
		{n: 4, remaining: 0, iterations: 2},
		{n: 5, remaining: 1, iterations: 2},
		{n: 10, remaining: 0, iterations: 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			res, err := Reduce(path(tt.n), dehairOpts(100))
			require.NoError(t, err)

			assert.Equal(t, tt.remaining, res.Stats.FilteredNodes)
			assert.Equal(t, 0, res.Stats.FilteredLinks)
			assert.Equal(t, tt.iterations, res.Stats.Iterations)
			assert.Equal(t, tt.n-tt.remaining, res.Stats.RemovedNodes)
		})
	}
}

func TestReduce_CycleWithHair(t *testing.T) {
	edges := append(cycle(4), edge("n1", "h1"), edge("h1", "h2"), edge("h2", "h3"))

	res, err := Reduce(edges, dehairOpts(100))
	require.NoError(t, err)

	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, nodeIDs(res.Graph))
	assert.Len(t, res.Graph.Links, 4)
	assert.Equal(t, 3, res.Stats.Iterations)
}

func TestReduce_IterationCap(t *testing.T) {
	res, err := Reduce(path(10), dehairOpts(2))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.Iterations)
	assert.True(t, res.Stats.Capped)
	assert.Equal(t, 6, res.Stats.FilteredNodes)

	// exactly enough rounds is not capped
	res, err = Reduce(path(10), dehairOpts(5))
	require.NoError(t, err)
	assert.False(t, res.Stats.Capped)
}

func TestReduce_InvalidCap(t *testing.T) {
	_, err := Reduce(path(3), dehairOpts(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	// the cap is irrelevant in raw mode
	_, err = Reduce(path(3), Options{MaxIterations: 0})
	assert.NoError(t, err)
}

func TestReduce_EmptyInput(t *testing.T) {
	res, err := Reduce(nil, dehairOpts(100))
	require.NoError(t, err)

	assert.Empty(t, res.Graph.Nodes)
	assert.Empty(t, res.Graph.Links)
	assert.Equal(t, Stats{Dehaired: true}, res.Stats)
}

func TestReduce_SelfLoopCountsAsNeighbour(t *testing.T) {
	res, err := Reduce([]Edge{edge("s", "s")}, dehairOpts(10))
	require.NoError(t, err)
	assert.Empty(t, res.Graph.Nodes)
}

func TestReduce_NoDegreeOneSurvivors(t *testing.T) {
	edges := []Edge{
		edge("a", "b"), edge("b", "c"), edge("c", "a"),
		edge("c", "d"), edge("d", "e"), edge("e", "f"),
		edge("f", "d"), edge("f", "g"), edge("g", "h"),
		edge("x", "y"), edge("y", "z"),
		edge("b", "a"),
	}

	res, err := Reduce(edges, dehairOpts(100))
	require.NoError(t, err)
	require.False(t, res.Stats.Capped)

	for _, n := range res.Graph.Nodes {
		assert.NotEqual(t, 1, n.Degree, "node %s", n.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "y"}, nodeIDs(res.Graph))
}

func TestReduce_Idempotent(t *testing.T) {
	edges := append(cycle(5), edge("n2", "t1"), edge("t1", "t2"), edge("n4", "u1"))

	first, err := Reduce(edges, dehairOpts(100))
	require.NoError(t, err)

	fromEdges, err := Reduce(toEdges(first.Graph), dehairOpts(1000))
	require.NoError(t, err)
	assert.Equal(t, first.Graph.Links, fromEdges.Graph.Links)
	assert.Equal(t, 0, fromEdges.Stats.RemovedNodes)

	again, err := ReduceGraph(first.Graph, dehairOpts(100))
	require.NoError(t, err)
	assert.Equal(t, first.Graph, again.Graph)
	assert.Equal(t, 0, again.Stats.Iterations)
}

func TestReduceGraph_DoesNotMutateInput(t *testing.T) {
	g := Build(path(4))
	before := g.Clone()

	_, err := ReduceGraph(g, dehairOpts(100))
	require.NoError(t, err)
	assert.Equal(t, before, g)
}

func toEdges(g *Graph) []Edge {
	edges := make([]Edge, len(g.Links))
	for i, l := range g.Links {
		src, _ := g.Node(l.Source)
		dst, _ := g.Node(l.Target)
		edges[i] = Edge{
			Source: l.Source, SourceLabel: src.Label, SourceRole: src.Type,
			Target: l.Target, TargetLabel: dst.Label, TargetRole: dst.Type,
			Relation: l.Relation, Score: l.Score,
		}
	}
	return edges
}
