// Package graph builds the directed adjacency index of a model version and
// walks it to answer ancestor and descendant queries.
//
// A Graph is immutable once Build returns and may be shared by concurrent
// traversals without locking.
package graph

import "github.com/jsfong/model-parser/internal/models"

// Edge is one adjacency entry: the relationship that links two elements and
// the element at the far end of it.
type Edge struct {
	RelationshipID string `json:"relationship_id"`
	EndpointID     string `json:"endpoint_id"`
}

// Connector is the adjacency record of one element. Edge lists keep the input
// order of the relationships.
type Connector struct {
	ElementID string
	Out       []Edge
	In        []Edge
}

// Graph maps element ids to their connectors.
type Graph struct {
	connectors    map[string]*Connector
	relationships int
	resolved      int
	dangling      int
}

// Stats summarizes a built graph.
type Stats struct {
	Connectors    int `json:"connectors"`
	Relationships int `json:"relationships"`
	// Resolved counts relationships whose source and target both exist.
	Resolved int `json:"resolved"`
	// Dangling counts relationships with at least one missing endpoint.
	Dangling int `json:"dangling"`
}

// Build indexes elements and relationships. Relationships with a missing
// endpoint are kept on the side that resolves; those with no resolvable
// endpoint contribute nothing. Build never fails on dangling references.
func Build(elements []models.Element, relationships []models.Relationship) *Graph {
	g := &Graph{
		connectors:    make(map[string]*Connector, len(elements)),
		relationships: len(relationships),
	}

	for i := range elements {
		id := elements[i].ID
		if _, dup := g.connectors[id]; !dup {
			g.connectors[id] = &Connector{ElementID: id}
		}
	}

	for i := range relationships {
		r := &relationships[i]

		src, hasSrc := g.connectors[r.SourceID]
		if hasSrc {
			src.Out = append(src.Out, Edge{RelationshipID: r.ID, EndpointID: r.TargetID})
		}

		dst, hasDst := g.connectors[r.TargetID]
		if hasDst {
			dst.In = append(dst.In, Edge{RelationshipID: r.ID, EndpointID: r.SourceID})
		}

		if hasSrc && hasDst {
			g.resolved++
		} else {
			g.dangling++
		}
	}

	return g
}

// Connector returns the adjacency record of an element.
func (g *Graph) Connector(elementID string) (*Connector, bool) {
	c, ok := g.connectors[elementID]

	return c, ok
}

// Has reports whether the element is part of the graph.
func (g *Graph) Has(elementID string) bool {
	_, ok := g.connectors[elementID]

	return ok
}

// Len returns the number of connectors.
func (g *Graph) Len() int {
	return len(g.connectors)
}

// ResolvedCount returns the number of relationships whose both endpoints resolved.
func (g *Graph) ResolvedCount() int {
	return g.resolved
}

// Stats returns the connector and relationship counters of the graph.
func (g *Graph) Stats() Stats {
	return Stats{
		Connectors:    len(g.connectors),
		Relationships: g.relationships,
		Resolved:      g.resolved,
		Dangling:      g.dangling,
	}
}
