// Package query runs the fixed element listing pipeline: id filter, nature
// filter, type filter, facet projection, limit and depth truncation.
package query

import "github.com/jsfong/model-parser/internal/models"

// Run answers q against elements. Empty queries yield an empty result.
// Counts follow the listing contract: TotalResultCount is the number of
// elements that passed the filters, ResultCount the number returned after
// the limit. A limit of 0 returns nothing; a depth of 0 disables truncation.
func Run(elements []models.Element, q *models.ElementQuery) (*models.QueryResult, error) {
	if q.IsEmpty() {
		return models.EmptyQueryResult(), nil
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	proj, err := NewProjection(q.Facet, q.Path, q.IncludeDetail)
	if err != nil {
		return nil, err
	}

	survivors := Filter(elements, q.ElementID, q.Type, q.Nature)

	n := min(q.Limit, len(survivors))

	// Projection is per element, so only the kept prefix is rendered.
	data := make([]any, n)
	for i := range n {
		data[i] = Truncate(proj.Apply(survivors[i]), q.Depth)
	}

	return &models.QueryResult{
		Data:             data,
		ResultCount:      n,
		TotalResultCount: len(survivors),
	}, nil
}

// Filter applies the id, nature and type filters in that order. An empty id
// keeps every element; models.FilterAll disables the nature or type filter.
func Filter(elements []models.Element, id, elementType, nature string) []*models.Element {
	out := make([]*models.Element, 0, len(elements))

	for i := range elements {
		e := &elements[i]

		if id != "" && e.ID != id {
			continue
		}

		if nature != models.FilterAll && e.Nature != nature {
			continue
		}

		if elementType != models.FilterAll && e.Type != elementType {
			continue
		}

		out = append(out, e)
	}

	return out
}
