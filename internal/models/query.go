package models

import (
	"fmt"

	"github.com/google/uuid"
)

// FilterAll disables the type or nature filter.
const FilterAll = "All"

// ElementQuery describes one element listing request.
type ElementQuery struct {
	ModelID       string
	Version       int // <= 0 means latest
	ElementID     string
	Type          string
	Nature        string
	Facet         FacetKind
	Path          string
	IncludeDetail bool
	Depth         int // 0 means no truncation
	Limit         int // 0 means no results
}

// IsEmpty reports whether the query carries nothing to answer. Empty queries
// short-circuit to an empty result instead of failing.
func (q *ElementQuery) IsEmpty() bool {
	return q.ModelID == "" || q.Type == "" || q.Nature == ""
}

// Validate checks the numeric bounds and the facet kind.
func (q *ElementQuery) Validate() error {
	if q.Depth < 0 {
		return fmt.Errorf("%w: depth must not be negative", ErrInvalidInput)
	}

	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}

	if q.Facet == "" {
		q.Facet = FacetNone
	}

	if _, err := ParseFacetKind(string(q.Facet)); err != nil {
		return err
	}

	return ValidateModelID(q.ModelID)
}

// QueryResult is the output of the element query pipeline.
type QueryResult struct {
	Data             []any `json:"data"`
	ResultCount      int   `json:"result_count"`
	TotalResultCount int   `json:"total_result_count"`
}

// EmptyQueryResult returns the default result for short-circuited queries.
func EmptyQueryResult() *QueryResult {
	return &QueryResult{Data: []any{}}
}

// ValidateModelID checks that a model id is a UUID.
func ValidateModelID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: model id is required", ErrInvalidInput)
	}

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: model id is not a uuid", ErrInvalidInput)
	}

	return nil
}
