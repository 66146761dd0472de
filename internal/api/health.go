// Package api provides the HTTP handlers and router of the model parser.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/db"
	"github.com/jsfong/model-parser/internal/ws"
)

const (
	livenessDBTimeout  = 2 * time.Second
	readinessDBTimeout = 3 * time.Second

	schemaCheckSQL = `SELECT to_regclass('cubs_object_model.saved_model') IS NOT NULL`
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db        DBChecker
	hub       *ws.Hub
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. db and hub may be nil.
func NewHealthHandler(dbc DBChecker, hub *ws.Hub, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		db:        dbc,
		hub:       hub,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	SchemaVersion int     `json:"schema_version"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type poolStats struct {
	Acquired int32 `json:"acquired"`
	Total    int32 `json:"total"`
	Max      int32 `json:"max"`
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Pool   *poolStats        `json:"pool,omitempty"`
}

// Liveness handles GET /api/v1/health. It always answers 200; the database
// field reports connectivity on a best-effort basis.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "connected",
		SchemaVersion: db.SchemaVersion(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.db == nil {
		resp.Database = "not_configured"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), livenessDBTimeout)
		defer cancel()

		if err := h.db.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	}

	if h.hub != nil {
		resp.WSClients = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready. It answers 503 until the database is
// reachable and the saved model table exists.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"database": "ok", "schema": "ok"}

	if h.db == nil {
		checks["database"] = "not_configured"
		checks["schema"] = "unknown"
		c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "not_ready", Checks: checks})

		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessDBTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK

	if err := h.db.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database health check failed")
		checks["database"] = "error"
		checks["schema"] = "unknown"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := h.checkSchema(ctx); err != nil {
		h.log.WithError(err).Error("readiness: schema check failed")
		checks["schema"] = "error"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	acquired, total, maxConns := h.db.Stat()

	c.JSON(code, readinessResponse{
		Status: status,
		Checks: checks,
		Pool:   &poolStats{Acquired: acquired, Total: total, Max: maxConns},
	})
}

func (h *HealthHandler) checkSchema(ctx context.Context) error {
	var exists bool
	if err := h.db.QueryRow(ctx, schemaCheckSQL).Scan(&exists); err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	if !exists {
		return fmt.Errorf("schema check: saved_model table missing")
	}

	return nil
}
