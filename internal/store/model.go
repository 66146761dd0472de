package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/dbpool"
	"github.com/jsfong/model-parser/internal/models"
)

// ModelStore reads and writes saved model versions.
type ModelStore struct {
	Base
}

// NewModelStore creates a new ModelStore.
func NewModelStore(pool *dbpool.Pool, log *logrus.Logger) *ModelStore {
	return &ModelStore{Base: Base{Pool: pool, Log: log}}
}

// FetchPayload returns the compressed payload of a model version together with
// the version it resolved to. A version <= 0 selects the latest one.
func (s *ModelStore) FetchPayload(ctx context.Context, modelID string, version int) ([]byte, int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var (
		row pgx.Row
		raw []byte
		ver int
	)

	if version <= 0 {
		row = s.Pool.QueryRow(ctx,
			"SELECT vers_no, saved_gzip FROM "+savedModelTable+
				" WHERE model_id = $1 ORDER BY vers_no DESC LIMIT 1", modelID)
	} else {
		row = s.Pool.QueryRow(ctx,
			"SELECT vers_no, saved_gzip FROM "+savedModelTable+
				" WHERE model_id = $1 AND vers_no = $2", modelID, version)
	}

	if err := row.Scan(&ver, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, models.ErrModelNotFound
		}

		return nil, 0, fmt.Errorf("fetching model %s version %d: %w", modelID, version, err)
	}

	return raw, ver, nil
}

// LoadModel fetches, inflates and parses one model version. It returns the
// decoded model and the concrete version it resolved to.
func (s *ModelStore) LoadModel(ctx context.Context, modelID string, version int) (*models.Model, int, error) {
	raw, ver, err := s.FetchPayload(ctx, modelID, version)
	if err != nil {
		return nil, 0, err
	}

	m, err := DecodeModel(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding model %s version %d: %w", modelID, ver, err)
	}

	s.Log.WithFields(logrus.Fields{
		"model_id":      modelID,
		"version":       ver,
		"payload_bytes": len(raw),
		"elements":      len(m.Elements),
		"relationships": len(m.Relationships),
	}).Debug("model loaded")

	return m, ver, nil
}

// LatestVersion returns the newest version number of a model.
func (s *ModelStore) LatestVersion(ctx context.Context, modelID string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ver *int

	err := s.Pool.QueryRow(ctx,
		"SELECT MAX(vers_no) FROM "+savedModelTable+" WHERE model_id = $1", modelID).Scan(&ver)
	if err != nil {
		return 0, fmt.Errorf("resolving latest version of %s: %w", modelID, err)
	}

	if ver == nil {
		return 0, models.ErrModelNotFound
	}

	return *ver, nil
}

// ListVersions returns every stored version of a model, newest first.
func (s *ModelStore) ListVersions(ctx context.Context, modelID string) ([]int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		"SELECT vers_no FROM "+savedModelTable+" WHERE model_id = $1 ORDER BY vers_no DESC", modelID)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}

	versions, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("collecting versions: %w", err)
	}

	if len(versions) == 0 {
		return nil, models.ErrModelNotFound
	}

	return versions, nil
}

// SaveModel stores a compressed payload as the next version of a model and
// returns the version number assigned to it.
func (s *ModelStore) SaveModel(ctx context.Context, modelID string, compressed []byte) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// Serializes concurrent saves of the same model for the rest of the transaction.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", modelID); err != nil {
		return 0, fmt.Errorf("locking model %s: %w", modelID, err)
	}

	var ver int

	err = tx.QueryRow(ctx,
		"INSERT INTO "+savedModelTable+" (model_id, vers_no, saved_gzip)"+
			" SELECT $1, COALESCE(MAX(vers_no), 0) + 1, $2 FROM "+savedModelTable+" WHERE model_id = $1"+
			" RETURNING vers_no", modelID, compressed).Scan(&ver)
	if err != nil {
		return 0, fmt.Errorf("inserting model %s: %w", modelID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing model %s: %w", modelID, err)
	}

	s.Log.WithFields(logrus.Fields{
		"model_id":      modelID,
		"version":       ver,
		"payload_bytes": len(compressed),
	}).Info("model version saved")

	return ver, nil
}
