package query

import (
	"fmt"

	"github.com/ohler55/ojg/jp"

	"github.com/jsfong/model-parser/internal/models"
)

// Projection selects what each surviving element is rendered as.
type Projection struct {
	Kind          models.FacetKind
	IncludeDetail bool

	path jp.Expr
}

// NewProjection compiles a projection. An empty path keeps the whole
// projected value; an unparseable path wraps models.ErrInvalidInput.
func NewProjection(kind models.FacetKind, path string, includeDetail bool) (*Projection, error) {
	if kind == "" {
		kind = models.FacetNone
	}

	p := &Projection{Kind: kind, IncludeDetail: includeDetail}

	if path != "" {
		x, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("%w: path expression %q: %w", models.ErrInvalidInput, path, err)
		}

		p.path = x
	}

	return p, nil
}

// Apply renders one element. FacetNone yields the whole stored element, any
// other kind yields only that facet bag. The path expression then narrows the
// value: one match yields the match, several yield an array, none yields nil.
// IncludeDetail wraps a facet projection with the element's identifying fields.
func (p *Projection) Apply(e *models.Element) any {
	var v any

	if p.Kind == models.FacetNone {
		v = e.Document()
	} else {
		bag := e.Facet(p.Kind)
		if bag == nil {
			bag = map[string]any{}
		}

		v = bag
	}

	if p.path != nil {
		v = narrow(p.path.Get(v))
	}

	if p.IncludeDetail && p.Kind != models.FacetNone {
		return map[string]any{
			"id":      e.ID,
			"type":    e.Type,
			"nature":  e.Nature,
			"name":    e.Name,
			"version": e.Version,
			"facet":   v,
		}
	}

	return v
}

func narrow(matches []any) any {
	switch len(matches) {
	case 0:
		return nil
	case 1:
		return matches[0]
	default:
		return matches
	}
}
