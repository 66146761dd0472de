package api

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jsfong/model-parser/internal/domain"
)

// ModelService is the read API the model handlers call.
type ModelService = domain.ModelService

// DBChecker is the slice of the connection pool the health endpoints use.
type DBChecker interface {
	HealthCheck(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Stat() (acquired, total, maxConns int32)
}
