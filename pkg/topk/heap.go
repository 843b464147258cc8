package topk

import (
	"container/heap"
	"sort"

	"github.com/gilchrisn/influence-graph-service/pkg/tabular"
)

// Scored is a row with its parsed score and arrival sequence.
type Scored struct {
	Score float64
	Seq   int64
	Row   tabular.Row
}

// less orders by score, then by arrival so that among equal scores the
// earliest row sits at the root and is evicted first.
func less(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Seq < b.Seq
}

// minHeap implements heap.Interface over Scored items.
type minHeap []Scored

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return less(h[i], h[j]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x interface{}) {
	*h = append(*h, x.(Scored))
}

func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// Heap keeps the K highest-scoring items offered to it.
type Heap struct {
	items    minHeap
	capacity int
}

// maxPrealloc bounds the slots reserved up front. Larger heaps grow on demand.
const maxPrealloc = 1024

// NewHeap creates an empty heap holding at most capacity items.
func NewHeap(capacity int) *Heap {
	return &Heap{
		items:    make(minHeap, 0, max(0, min(capacity, maxPrealloc))),
		capacity: capacity,
	}
}

func (h *Heap) Len() int { return h.items.Len() }

// Min returns the lowest retained item.
func (h *Heap) Min() (Scored, bool) {
	if len(h.items) == 0 {
		return Scored{}, false
	}
	return h.items[0], true
}

// Offer inserts s while the heap has room. Once full, s replaces the
// current minimum only when its score is strictly greater. Reports whether
// s was kept.
func (h *Heap) Offer(s Scored) bool {
	if h.capacity <= 0 {
		return false
	}
	if len(h.items) < h.capacity {
		heap.Push(&h.items, s)
		return true
	}
	if s.Score <= h.items[0].Score {
		return false
	}
	h.items[0] = s
	heap.Fix(&h.items, 0)
	return true
}

// Drain returns the retained items sorted by score descending, earliest
// arrival first among equal scores, and empties the heap.
func (h *Heap) Drain() []Scored {
	out := []Scored(h.items)
	h.items = nil
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
