package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/middleware"
	"github.com/jsfong/model-parser/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	DB          DBChecker
	Hub         *ws.Hub // nil disables the event feed
	Models      ModelService
	Keys        middleware.KeyLookup // nil disables authentication
	CORSOrigins []string
	Version     string
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB; the routes are GETs, which may still carry a body
	rateLimit   = 100     // requests per second per IP
	rateBurst   = 200     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	// Refuses oversized bodies sent along with a GET before any handler runs.
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.DB, deps.Hub, log, deps.Version)
	handler := NewModelHandler(deps.Models, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	if deps.Keys != nil {
		guard := middleware.NewBruteForceGuard(log)
		api.Use(middleware.BruteForceMiddleware(guard))
		api.Use(middleware.AuthMiddleware(deps.Keys, log, guard))
	}

	byModel := api.Group("/models/:id")
	byModel.GET("/versions", handler.Versions)
	byModel.GET("/stats", handler.Stats)
	byModel.GET("/elements", handler.Elements)
	byModel.GET("/elements/:elementId/relationships", handler.Relationships)

	if deps.Hub != nil {
		api.GET("/ws/models/:id", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins, deps.Keys))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
// ctx bounds the lifetime of WebSocket connections.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
