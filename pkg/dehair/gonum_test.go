package dehair

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponents(t *testing.T) {
	g := Build([]Edge{
		edge("a", "b"), edge("b", "c"), edge("c", "a"),
		edge("x", "y"),
		edge("s", "s"),
	})

	comps := Components(g)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"x", "y"}, {"s"}}, comps)
}

func TestRank_HubRanksHighest(t *testing.T) {
	g := Build([]Edge{
		edge("hub", "a"), edge("hub", "b"), edge("hub", "c"),
		edge("hub", "d"), edge("hub", "e"), edge("a", "b"),
		edge("hub", "a"),
	})

	ranks, err := NewRankCalculator().Rank(g)
	require.NoError(t, err)
	require.Len(t, ranks, 6)
	assert.Equal(t, "hub", ranks[0].ID)
	for i := 1; i < len(ranks); i++ {
		assert.GreaterOrEqual(t, ranks[i-1].Rank, ranks[i].Rank)
	}
}

func TestRank_EmptyGraph(t *testing.T) {
	ranks, err := NewRankCalculator().Rank(&Graph{})
	require.NoError(t, err)
	assert.Empty(t, ranks)
}

func TestRank_InvalidDamping(t *testing.T) {
	_, err := NewRankCalculator().WithDampingFactor(1.5).Rank(Build(path(3)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
