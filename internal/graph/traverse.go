package graph

import (
	"encoding/json"
	"fmt"

	"github.com/jsfong/model-parser/internal/models"
)

// Direction selects which edge list a walk follows.
type Direction int

// Walk directions.
const (
	Up   Direction = iota // towards ancestors, via In edges
	Down                  // towards descendants, via Out edges
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}

	return "down"
}

type visitKey struct {
	elementID string
	dir       Direction
}

// path is one walk from the focal element; hops[i] is the i-th edge taken.
type path struct {
	hops []Edge
}

// Walk returns one line per element reachable from focalID within maxDepth
// hops in the given direction. Elements are visited at most once per walk, so
// cycles terminate and produce no duplicate lines. Edges whose far end is not
// in the graph are not followed.
func (g *Graph) Walk(focalID string, dir Direction, maxDepth int) ([]models.Line, error) {
	if !g.Has(focalID) {
		return nil, fmt.Errorf("%w: %s", models.ErrElementNotFound, focalID)
	}

	return g.walk(focalID, dir, maxDepth, map[visitKey]struct{}{}), nil
}

func (g *Graph) walk(focalID string, dir Direction, maxDepth int, visited map[visitKey]struct{}) []models.Line {
	lines := []models.Line{}
	if maxDepth <= 0 {
		return lines
	}

	visited[visitKey{focalID, dir}] = struct{}{}
	queue := []path{{}}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if len(p.hops) >= maxDepth {
			continue
		}

		at := focalID
		if n := len(p.hops); n > 0 {
			at = p.hops[n-1].EndpointID
		}

		c := g.connectors[at]

		edges := c.Out
		if dir == Up {
			edges = c.In
		}

		for _, e := range edges {
			if !g.Has(e.EndpointID) {
				continue
			}

			key := visitKey{e.EndpointID, dir}
			if _, seen := visited[key]; seen {
				continue
			}

			visited[key] = struct{}{}

			hops := make([]Edge, len(p.hops), len(p.hops)+1)
			copy(hops, p.hops)
			hops = append(hops, e)

			lines = append(lines, renderLine(focalID, dir, hops))
			queue = append(queue, path{hops: hops})
		}
	}

	return lines
}

// renderLine lays out a path as tokens: one indent per hop beyond the first,
// the focal value, then an arrow, relationship, arrow, element triple per hop.
func renderLine(focalID string, dir Direction, hops []Edge) models.Line {
	arrow := models.TokenOutArrow
	if dir == Up {
		arrow = models.TokenInArrow
	}

	tokens := make([]models.Token, 0, len(hops)-1+1+4*len(hops))
	for range len(hops) - 1 {
		tokens = append(tokens, models.Token{Kind: models.TokenIndent})
	}

	tokens = append(tokens, models.Token{Kind: models.TokenValue, ID: focalID})

	for _, h := range hops {
		tokens = append(tokens,
			models.Token{Kind: arrow},
			models.Token{Kind: models.TokenValue, ID: h.RelationshipID},
			models.Token{Kind: arrow},
			models.Token{Kind: models.TokenValue, ID: h.EndpointID},
		)
	}

	return models.Line{Depth: len(hops), Tokens: tokens}
}

// Resolver looks up the stored form of elements and relationships.
// *models.Model implements it.
type Resolver interface {
	ElementByID(id string) (*models.Element, bool)
	RelationshipByID(id string) (*models.Relationship, bool)
}

// Traverse walks up to parentDepth hops towards ancestors and childDepth hops
// towards descendants of focalID, and collects the stored form of every
// element and relationship the lines reference. Negative depths count as 0.
func Traverse(g *Graph, res Resolver, focalID string, parentDepth, childDepth int) (*models.OutputGraph, error) {
	if !g.Has(focalID) {
		return nil, fmt.Errorf("%w: %s", models.ErrElementNotFound, focalID)
	}

	visited := make(map[visitKey]struct{})

	out := &models.OutputGraph{
		FocalID:      focalID,
		ParentLines:  g.walk(focalID, Up, parentDepth, visited),
		ChildLines:   g.walk(focalID, Down, childDepth, visited),
		ElementsData: make(map[string]json.RawMessage),
	}

	if err := collect(out.ElementsData, res, focalID); err != nil {
		return nil, err
	}

	for _, lines := range [][]models.Line{out.ParentLines, out.ChildLines} {
		for _, l := range lines {
			for _, t := range l.Tokens {
				if t.Kind != models.TokenValue {
					continue
				}

				if err := collect(out.ElementsData, res, t.ID); err != nil {
					return nil, err
				}
			}
		}
	}

	return out, nil
}

func collect(dst map[string]json.RawMessage, res Resolver, id string) error {
	if _, done := dst[id]; done {
		return nil
	}

	var (
		raw []byte
		err error
	)

	if e, ok := res.ElementByID(id); ok {
		raw, err = json.Marshal(e)
	} else if r, ok := res.RelationshipByID(id); ok {
		raw, err = json.Marshal(r)
	} else {
		return nil
	}

	if err != nil {
		return fmt.Errorf("serializing %s: %w", id, err)
	}

	dst[id] = raw

	return nil
}
