package service

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/models"
)

// mockModelStore records calls and returns configured responses.
type mockModelStore struct {
	mu    sync.Mutex
	calls []string

	loadModel     func(ctx context.Context, modelID string, version int) (*models.Model, int, error)
	latestVersion func(ctx context.Context, modelID string) (int, error)
	listVersions  func(ctx context.Context, modelID string) ([]int, error)
}

func (m *mockModelStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockModelStore) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}

	return n
}

func (m *mockModelStore) LoadModel(ctx context.Context, modelID string, version int) (*models.Model, int, error) {
	m.record("LoadModel")
	return m.loadModel(ctx, modelID, version)
}

func (m *mockModelStore) LatestVersion(ctx context.Context, modelID string) (int, error) {
	m.record("LatestVersion")
	return m.latestVersion(ctx, modelID)
}

func (m *mockModelStore) ListVersions(ctx context.Context, modelID string) ([]int, error) {
	m.record("ListVersions")
	return m.listVersions(ctx, modelID)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}
