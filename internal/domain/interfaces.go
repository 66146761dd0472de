// Package domain defines the canonical service interface shared by the REST
// layer and its tests. Consumers should depend on it rather than re-declaring
// an equivalent one.
package domain

import (
	"context"

	"github.com/jsfong/model-parser/internal/models"
)

// ModelService defines the read operations over saved models. A version <= 0
// selects the latest version of the model.
type ModelService interface {
	ListVersions(ctx context.Context, modelID string) ([]int, error)
	GetModelStats(ctx context.Context, modelID string, version int) (*models.ModelStats, error)
	QueryElements(ctx context.Context, q models.ElementQuery) (*models.QueryResult, error)
	GetRelationshipDetail(ctx context.Context, modelID string, version int, elementID string, parentDepth, childDepth int) (*models.OutputGraph, error)
}
