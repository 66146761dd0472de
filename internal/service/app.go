// Package service provides the application context and the model operations
// between API handlers and the model store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/cache"
	"github.com/jsfong/model-parser/internal/graph"
	"github.com/jsfong/model-parser/internal/metrics"
	"github.com/jsfong/model-parser/internal/models"
)

// ModelStore is the data-access interface the application context depends on.
type ModelStore interface {
	LoadModel(ctx context.Context, modelID string, version int) (*models.Model, int, error)
	LatestVersion(ctx context.Context, modelID string) (int, error)
	ListVersions(ctx context.Context, modelID string) ([]int, error)
}

// App is the process-wide context: the model store plus the model and graph
// caches. It is created once at startup and released with Close.
type App struct {
	store  ModelStore
	models *cache.Cache[*models.Model]
	graphs *cache.Cache[*graph.Graph]
	log    *logrus.Logger
}

// NewApp creates the application context. Capacities below 1 fall back to
// cache.DefaultCapacity.
func NewApp(store ModelStore, modelCapacity, graphCapacity int, log *logrus.Logger) (*App, error) {
	mc, err := cache.New[*models.Model]("models", modelCapacity, log)
	if err != nil {
		return nil, err
	}

	gc, err := cache.New[*graph.Graph]("graphs", graphCapacity, log)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"model_cache_capacity": mc.Capacity(),
		"graph_cache_capacity": gc.Capacity(),
	}).Info("application context ready")

	return &App{store: store, models: mc, graphs: gc, log: log}, nil
}

// Close drops both caches. The App must not be used afterwards.
func (a *App) Close() {
	a.models.Purge()
	a.graphs.Purge()
	a.log.Debug("application context closed")
}

// resolveVersion turns "latest" (version <= 0) into a concrete version so
// cache keys always name one version.
func (a *App) resolveVersion(ctx context.Context, modelID string, version int) (int, error) {
	if version > 0 {
		return version, nil
	}

	return a.store.LatestVersion(ctx, modelID)
}

// Model returns a decoded model version from the cache, loading it on a miss.
func (a *App) Model(ctx context.Context, modelID string, version int) (*models.Model, int, error) {
	ver, err := a.resolveVersion(ctx, modelID, version)
	if err != nil {
		return nil, 0, err
	}

	m, err := a.models.GetOrLoad(ctx, cache.Key(modelID, ver), func(ctx context.Context) (*models.Model, error) {
		start := time.Now()

		m, _, err := a.store.LoadModel(ctx, modelID, ver)
		if err != nil {
			return nil, err
		}

		metrics.ModelLoadDuration.Observe(time.Since(start).Seconds())

		return m, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return m, ver, nil
}

// Graph returns the built graph of a model version together with the model
// it was built from, building and caching it on a miss.
func (a *App) Graph(ctx context.Context, modelID string, version int) (*graph.Graph, *models.Model, int, error) {
	m, ver, err := a.Model(ctx, modelID, version)
	if err != nil {
		return nil, nil, 0, err
	}

	key := cache.Key(modelID, ver)

	g, err := a.graphs.GetOrLoad(ctx, key, func(context.Context) (*graph.Graph, error) {
		start := time.Now()

		g, err := buildGraph(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		elapsed := time.Since(start)
		st := g.Stats()
		metrics.GraphBuildDuration.Observe(elapsed.Seconds())
		metrics.DanglingRelationships.Add(float64(st.Dangling))

		a.log.WithFields(logrus.Fields{
			"model_id":      modelID,
			"version":       ver,
			"connectors":    st.Connectors,
			"relationships": st.Relationships,
			"resolved":      st.Resolved,
			"dangling":      st.Dangling,
			"duration":      elapsed,
		}).Info("graph built")

		return g, nil
	})
	if err != nil {
		return nil, nil, 0, err
	}

	return g, m, ver, nil
}

// buildGraph turns a panic inside the builder into ErrGraphBuild so one bad
// model cannot take the request goroutine down.
func buildGraph(m *models.Model) (g *graph.Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", models.ErrGraphBuild, r)
		}
	}()

	return graph.Build(m.Elements, m.Relationships), nil
}

// CachedGraph returns the graph of a model version only if it is already built.
func (a *App) CachedGraph(modelID string, version int) (*graph.Graph, bool) {
	return a.graphs.Peek(cache.Key(modelID, version))
}

// Versions lists the stored versions of a model, newest first.
func (a *App) Versions(ctx context.Context, modelID string) ([]int, error) {
	return a.store.ListVersions(ctx, modelID)
}
