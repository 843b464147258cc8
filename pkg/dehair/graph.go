// Package dehair builds the influence graph from train edges and strips
// degree-1 nodes until only the connected core remains.
package dehair

// Role classifies a node by the edges it was seen on.
type Role string

const (
	RoleTrain Role = "train_entity"
	RoleTest  Role = "test_entity"
)

// merge returns the stronger of two roles. A test role is never given up.
func (r Role) merge(other Role) Role {
	if r == RoleTest || other == RoleTest {
		return RoleTest
	}
	return RoleTrain
}

// Edge is one directed input edge with endpoint labels and roles.
type Edge struct {
	Source      string
	SourceLabel string
	SourceRole  Role
	Target      string
	TargetLabel string
	TargetRole  Role
	Relation    string
	Score       float64
}

// Node is a graph vertex. Degree counts distinct neighbours, not edges.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Type   Role   `json:"type"`
	Degree int    `json:"degree"`
}

// Link is a retained directed edge.
type Link struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Score    float64 `json:"score"`
}

// Graph is a node list in first-seen order plus the links between them.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Build derives the node set from edge endpoints. Labels come from the
// first occurrence of a key; roles are merged across all occurrences.
func Build(edges []Edge) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0),
		Links: make([]Link, 0, len(edges)),
	}
	index := make(map[string]int)

	add := func(key, label string, role Role) {
		if role == "" {
			role = RoleTrain
		}
		if i, ok := index[key]; ok {
			g.Nodes[i].Type = g.Nodes[i].Type.merge(role)
			return
		}
		index[key] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{ID: key, Label: label, Type: role})
	}

	for _, e := range edges {
		add(e.Source, e.SourceLabel, e.SourceRole)
		add(e.Target, e.TargetLabel, e.TargetRole)
		g.Links = append(g.Links, Link{
			Source:   e.Source,
			Target:   e.Target,
			Relation: e.Relation,
			Score:    e.Score,
		})
	}

	g.recomputeDegrees()
	return g
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	return &Graph{
		Nodes: append(make([]Node, 0, len(g.Nodes)), g.Nodes...),
		Links: append(make([]Link, 0, len(g.Links)), g.Links...),
	}
}

// Neighbors returns the distinct undirected neighbours of every node,
// counting only links whose endpoints are both present. A self-loop makes
// a node its own neighbour.
func (g *Graph) Neighbors() map[string]map[string]struct{} {
	adj := make(map[string]map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n.ID] = make(map[string]struct{})
	}
	for _, l := range g.Links {
		src, ok := adj[l.Source]
		if !ok {
			continue
		}
		dst, ok := adj[l.Target]
		if !ok {
			continue
		}
		src[l.Target] = struct{}{}
		dst[l.Source] = struct{}{}
	}
	return adj
}

func (g *Graph) recomputeDegrees() {
	adj := g.Neighbors()
	for i := range g.Nodes {
		g.Nodes[i].Degree = len(adj[g.Nodes[i].ID])
	}
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
