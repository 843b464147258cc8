package topk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeap_BoundedCapacity(t *testing.T) {
	h := NewHeap(3)
	for i, s := range []float64{5, 1, 4, 2, 8, 3} {
		h.Offer(Scored{Score: s, Seq: int64(i)})
		assert.LessOrEqual(t, h.Len(), 3)
	}

	min, ok := h.Min()
	require.True(t, ok)
	assert.Equal(t, 4.0, min.Score)

	out := h.Drain()
	require.Len(t, out, 3)
	assert.Equal(t, []float64{8, 5, 4}, []float64{out[0].Score, out[1].Score, out[2].Score})
	assert.Zero(t, h.Len())
}

func TestHeap_EqualScoreDiscarded(t *testing.T) {
	h := NewHeap(1)
	require.True(t, h.Offer(Scored{Score: 1, Seq: 1}))
	assert.False(t, h.Offer(Scored{Score: 1, Seq: 2}))
	assert.True(t, h.Offer(Scored{Score: 1.5, Seq: 3}))

	out := h.Drain()
	require.Len(t, out, 1)
	assert.EqualValues(t, 3, out[0].Seq)
}

func TestHeap_EmptyMin(t *testing.T) {
	_, ok := NewHeap(2).Min()
	assert.False(t, ok)
}

func TestHeap_HugeCapacityGrowsOnDemand(t *testing.T) {
	h := NewHeap(1 << 50)
	assert.LessOrEqual(t, cap(h.items), maxPrealloc)

	for i := 0; i < 2*maxPrealloc; i++ {
		require.True(t, h.Offer(Scored{Score: float64(i), Seq: int64(i)}))
	}
	assert.Equal(t, 2*maxPrealloc, h.Len())
}
