package dehair

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultMaxIterations bounds the pruning loop.
const DefaultMaxIterations = 100

// ErrInvalidArgument is returned for a non-positive iteration cap.
var ErrInvalidArgument = errors.New("invalid argument")

// Options controls Reduce.
type Options struct {
	// Dehair enables pruning. When false the graph is returned as built.
	Dehair bool
	// MaxIterations caps the pruning loop. Must be positive when Dehair is set.
	MaxIterations int
	Logger        *zerolog.Logger
}

// Stats summarises a reduction.
type Stats struct {
	OriginalNodes int  `json:"original_nodes"`
	OriginalLinks int  `json:"original_links"`
	FilteredNodes int  `json:"filtered_nodes"`
	FilteredLinks int  `json:"filtered_links"`
	RemovedNodes  int  `json:"removed_nodes"`
	RemovedLinks  int  `json:"removed_links"`
	Dehaired      bool `json:"dehaired"`
	Iterations    int  `json:"iterations"`
	Capped        bool `json:"capped"`
}

// Result is a pruned graph and the statistics of how it was reached.
type Result struct {
	Graph *Graph
	Stats Stats
}

// Reduce builds the graph from edges and prunes it.
func Reduce(edges []Edge, opts Options) (*Result, error) {
	return ReduceGraph(Build(edges), opts)
}

// ReduceGraph prunes a copy of g. Each iteration removes every node whose
// degree is exactly 1, drops links touching removed nodes and recomputes
// all degrees. Isolated nodes are kept. The loop ends at a fixed point or
// after MaxIterations rounds; in the latter case Stats.Capped is set if
// degree-1 nodes remain.
func ReduceGraph(g *Graph, opts Options) (*Result, error) {
	if opts.Dehair && opts.MaxIterations <= 0 {
		return nil, fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidArgument, opts.MaxIterations)
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	work := g.Clone()
	work.recomputeDegrees()

	stats := Stats{
		OriginalNodes: len(work.Nodes),
		OriginalLinks: len(work.Links),
		Dehaired:      opts.Dehair,
	}

	if opts.Dehair {
		fixed := false
		for stats.Iterations < opts.MaxIterations {
			leaves := leafSet(work)
			if len(leaves) == 0 {
				fixed = true
				break
			}

			logger.Debug().
				Int("iteration", stats.Iterations+1).
				Int("leaves", len(leaves)).
				Msg("Removing degree-1 nodes")

			work.remove(leaves)
			stats.Iterations++
		}
		if !fixed && len(leafSet(work)) > 0 {
			stats.Capped = true
		}

		logger.Debug().
			Int("iterations", stats.Iterations).
			Bool("capped", stats.Capped).
			Msg("De-hairing complete")
	}

	stats.FilteredNodes = len(work.Nodes)
	stats.FilteredLinks = len(work.Links)
	stats.RemovedNodes = stats.OriginalNodes - stats.FilteredNodes
	stats.RemovedLinks = stats.OriginalLinks - stats.FilteredLinks

	return &Result{Graph: work, Stats: stats}, nil
}

func leafSet(g *Graph) map[string]struct{} {
	leaves := make(map[string]struct{})
	for _, n := range g.Nodes {
		if n.Degree == 1 {
			leaves[n.ID] = struct{}{}
		}
	}
	return leaves
}

// remove deletes the given nodes and every link touching them, then
// recomputes degrees from scratch.
func (g *Graph) remove(ids map[string]struct{}) {
	nodes := g.Nodes[:0]
	for _, n := range g.Nodes {
		if _, gone := ids[n.ID]; !gone {
			nodes = append(nodes, n)
		}
	}
	g.Nodes = nodes

	links := g.Links[:0]
	for _, l := range g.Links {
		_, srcGone := ids[l.Source]
		_, dstGone := ids[l.Target]
		if !srcGone && !dstGone {
			links = append(links, l)
		}
	}
	g.Links = links

	g.recomputeDegrees()
}
