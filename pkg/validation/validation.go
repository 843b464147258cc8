// Package validation checks the structure of graphs produced by the
// de-hairing reducer.
package validation

import (
	"fmt"
	"strings"

	"github.com/gilchrisn/influence-graph-service/pkg/dehair"
)

// ValidateGraphStructure checks node ids, link references and reported
// degrees of g.
func ValidateGraphStructure(g *dehair.Graph) error {
	if g == nil {
		return ValidationError{Field: "graph", Message: "graph cannot be nil"}
	}

	var errors ValidationErrors
	errors = append(errors, validateNodes(g.Nodes)...)
	errors = append(errors, validateLinks(g.Links, g.Nodes)...)
	if len(errors) > 0 {
		return errors
	}

	errors = append(errors, validateDegrees(g)...)
	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidatePruned runs ValidateGraphStructure and, unless the reduction was
// capped, also requires that no node is left with degree 1.
func ValidatePruned(res *dehair.Result) error {
	if res == nil {
		return ValidationError{Field: "result", Message: "result cannot be nil"}
	}
	if err := ValidateGraphStructure(res.Graph); err != nil {
		return err
	}

	var errors ValidationErrors
	if res.Stats.FilteredNodes != len(res.Graph.Nodes) {
		errors = append(errors, ValidationError{
			Field:   "stats.filtered_nodes",
			Message: fmt.Sprintf("reports %d nodes, graph has %d", res.Stats.FilteredNodes, len(res.Graph.Nodes)),
		})
	}
	if res.Stats.FilteredLinks != len(res.Graph.Links) {
		errors = append(errors, ValidationError{
			Field:   "stats.filtered_links",
			Message: fmt.Sprintf("reports %d links, graph has %d", res.Stats.FilteredLinks, len(res.Graph.Links)),
		})
	}

	if res.Stats.Dehaired && !res.Stats.Capped {
		for _, n := range res.Graph.Nodes {
			if n.Degree == 1 {
				errors = append(errors, ValidationError{
					Field:   "node.degree",
					Message: "degree-1 node survived an uncapped reduction",
					Value:   n.ID,
				})
			}
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func validateNodes(nodes []dehair.Node) ValidationErrors {
	var errors ValidationErrors
	seen := make(map[string]bool, len(nodes))

	for _, n := range nodes {
		if strings.TrimSpace(n.ID) == "" {
			errors = append(errors, ValidationError{
				Field:   "node.id",
				Message: "node ID cannot be empty or whitespace",
				Value:   n.ID,
			})
			continue
		}
		if seen[n.ID] {
			errors = append(errors, ValidationError{
				Field:   "node.id",
				Message: "duplicate node ID",
				Value:   n.ID,
			})
		}
		seen[n.ID] = true

		if n.Type != dehair.RoleTest && n.Type != dehair.RoleTrain {
			errors = append(errors, ValidationError{
				Field:   "node.type",
				Message: fmt.Sprintf("unknown node type %q", n.Type),
				Value:   n.ID,
			})
		}
	}
	return errors
}

func validateLinks(links []dehair.Link, nodes []dehair.Node) ValidationErrors {
	var errors ValidationErrors
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	for i, l := range links {
		if !present[l.Source] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("links[%d].source", i),
				Message: "link references a missing node",
				Value:   l.Source,
			})
		}
		if !present[l.Target] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("links[%d].target", i),
				Message: "link references a missing node",
				Value:   l.Target,
			})
		}
	}
	return errors
}

func validateDegrees(g *dehair.Graph) ValidationErrors {
	var errors ValidationErrors
	adj := g.Neighbors()

	for _, n := range g.Nodes {
		if want := len(adj[n.ID]); n.Degree != want {
			errors = append(errors, ValidationError{
				Field:   "node.degree",
				Message: fmt.Sprintf("reported degree %d, distinct neighbours %d", n.Degree, want),
				Value:   n.ID,
			})
		}
	}
	return errors
}
