package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/domain"
	"github.com/jsfong/model-parser/internal/graph"
	"github.com/jsfong/model-parser/internal/models"
	"github.com/jsfong/model-parser/internal/query"
)

// Compile-time check: *ModelService must satisfy domain.ModelService.
var _ domain.ModelService = (*ModelService)(nil)

// ModelService answers model queries from the application context.
type ModelService struct {
	app *App
	log *logrus.Logger
}

// NewModelService creates a ModelService.
func NewModelService(app *App, log *logrus.Logger) *ModelService {
	return &ModelService{app: app, log: log}
}

// ListVersions returns every stored version of a model, newest first.
func (s *ModelService) ListVersions(ctx context.Context, modelID string) ([]int, error) {
	s.log.WithField("model_id", modelID).Debug("model.versions")

	if err := models.ValidateModelID(modelID); err != nil {
		return nil, err
	}

	return s.app.Versions(ctx, modelID)
}

// GetModelStats summarizes one model version. The connected relationship
// count is only reported when the graph is already built.
func (s *ModelService) GetModelStats(ctx context.Context, modelID string, version int) (*models.ModelStats, error) {
	s.log.WithFields(logrus.Fields{
		"model_id": modelID,
		"version":  version,
	}).Debug("model.stats")

	if err := models.ValidateModelID(modelID); err != nil {
		return nil, err
	}

	m, ver, err := s.app.Model(ctx, modelID, version)
	if err != nil {
		return nil, err
	}

	versions, err := s.app.Versions(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	st := ComputeStats(m)
	st.ModelID = modelID
	st.Version = ver
	st.ModelVersions = versions

	if g, ok := s.app.CachedGraph(modelID, ver); ok {
		resolved := g.ResolvedCount()
		st.ConnectedRelationshipsCount = &resolved
	}

	return st, nil
}

// QueryElements runs the listing pipeline over one model version. Empty
// queries return an empty result without touching the store.
func (s *ModelService) QueryElements(ctx context.Context, q models.ElementQuery) (*models.QueryResult, error) {
	s.log.WithFields(logrus.Fields{
		"model_id":   q.ModelID,
		"version":    q.Version,
		"element_id": q.ElementID,
		"type":       q.Type,
		"nature":     q.Nature,
		"facet":      q.Facet,
		"depth":      q.Depth,
		"limit":      q.Limit,
	}).Debug("model.query_elements")

	if q.IsEmpty() {
		return models.EmptyQueryResult(), nil
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	m, _, err := s.app.Model(ctx, q.ModelID, q.Version)
	if err != nil {
		return nil, err
	}

	return query.Run(m.Elements, &q)
}

// GetRelationshipDetail walks the ancestors and descendants of one element.
func (s *ModelService) GetRelationshipDetail(
	ctx context.Context,
	modelID string,
	version int,
	elementID string,
	parentDepth, childDepth int,
) (*models.OutputGraph, error) {
	s.log.WithFields(logrus.Fields{
		"model_id":     modelID,
		"version":      version,
		"element_id":   elementID,
		"parent_depth": parentDepth,
		"child_depth":  childDepth,
	}).Debug("model.relationship_detail")

	if err := models.ValidateModelID(modelID); err != nil {
		return nil, err
	}

	if elementID == "" {
		return nil, fmt.Errorf("%w: element id is required", models.ErrInvalidInput)
	}

	g, m, ver, err := s.app.Graph(ctx, modelID, version)
	if err != nil {
		return nil, err
	}

	out, err := graph.Traverse(g, m, elementID, parentDepth, childDepth)
	if err != nil {
		return nil, err
	}

	out.ModelID = modelID
	out.Version = ver

	return out, nil
}
