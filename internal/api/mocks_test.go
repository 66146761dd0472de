package api_test

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/jsfong/model-parser/internal/models"
)

var errNotStubbed = errors.New("not stubbed")

// mockModelService implements api.ModelService for testing.
type mockModelService struct {
	listVersionsFn  func(ctx context.Context, modelID string) ([]int, error)
	statsFn         func(ctx context.Context, modelID string, version int) (*models.ModelStats, error)
	queryFn         func(ctx context.Context, q models.ElementQuery) (*models.QueryResult, error)
	relationshipsFn func(ctx context.Context, modelID string, version int, elementID string, parentDepth, childDepth int) (*models.OutputGraph, error)

	mu      sync.Mutex
	queries []models.ElementQuery
}

func (m *mockModelService) ListVersions(ctx context.Context, modelID string) ([]int, error) {
	if m.listVersionsFn == nil {
		return nil, errNotStubbed
	}

	return m.listVersionsFn(ctx, modelID)
}

func (m *mockModelService) GetModelStats(ctx context.Context, modelID string, version int) (*models.ModelStats, error) {
	if m.statsFn == nil {
		return nil, errNotStubbed
	}

	return m.statsFn(ctx, modelID, version)
}

func (m *mockModelService) QueryElements(ctx context.Context, q models.ElementQuery) (*models.QueryResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()

	if m.queryFn == nil {
		return models.EmptyQueryResult(), nil
	}

	return m.queryFn(ctx, q)
}

func (m *mockModelService) GetRelationshipDetail(ctx context.Context, modelID string, version int, elementID string, parentDepth, childDepth int) (*models.OutputGraph, error) {
	if m.relationshipsFn == nil {
		return nil, errNotStubbed
	}

	return m.relationshipsFn(ctx, modelID, version, elementID, parentDepth, childDepth)
}

func (m *mockModelService) lastQuery() models.ElementQuery {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.queries[len(m.queries)-1]
}

// mockDB implements api.DBChecker for testing.
type mockDB struct {
	healthErr   error
	tableExists bool
	scanErr     error
}

func (m *mockDB) HealthCheck(context.Context) error { return m.healthErr }

func (m *mockDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return mockRow{exists: m.tableExists, err: m.scanErr}
}

func (m *mockDB) Stat() (acquired, total, maxConns int32) { return 1, 2, 6 }

type mockRow struct {
	exists bool
	err    error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	*(dest[0].(*bool)) = r.exists

	return nil
}
