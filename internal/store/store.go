// Package store provides data access for saved models.
//
// Models are stored as gzipped JSON documents, one row per (model id,
// version). The store only fetches and decodes; callers own caching.
package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// savedModelTable is the fully qualified table holding model versions.
const savedModelTable = "cubs_object_model.saved_model"

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}
