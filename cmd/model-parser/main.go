// Command model-parser serves model statistics, element queries and
// relationship walks over the saved models in PostgreSQL.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/api"
	"github.com/jsfong/model-parser/internal/config"
	"github.com/jsfong/model-parser/internal/db"
	"github.com/jsfong/model-parser/internal/db/migrations"
	"github.com/jsfong/model-parser/internal/dbpool"
	"github.com/jsfong/model-parser/internal/middleware"
	"github.com/jsfong/model-parser/internal/service"
	"github.com/jsfong/model-parser/internal/store"
	"github.com/jsfong/model-parser/internal/ws"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	if err := run(log); err != nil {
		log.WithError(err).Fatal("model-parser exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), int32(cfg.DBMaxConns)) //nolint:gosec // bounded to 1..100 by config
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
			return err
		}
	}

	app, err := service.NewApp(store.NewModelStore(pool, log), cfg.CacheSize, cfg.GraphCacheSize, log)
	if err != nil {
		return fmt.Errorf("creating app context: %w", err)
	}
	defer app.Close()

	deps := &api.RouterDeps{
		Log:         log,
		DB:          pool,
		Models:      service.NewModelService(app, log),
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	}

	if cfg.AuthEnabled() {
		deps.Keys = middleware.NewStaticKeys(cfg.RawAPIKeys())
	} else {
		log.Warn("API_KEYS is empty, authentication is disabled")
	}

	if cfg.EnableEvents {
		hub := ws.NewHub(log)
		go hub.Run(ctx)
		defer hub.Shutdown()

		if err := db.NewNotifyBridge(log, pool, hub).Start(ctx); err != nil {
			return fmt.Errorf("starting notify bridge: %w", err)
		}

		deps.Hub = hub
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(ctx, deps),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		log.WithFields(logrus.Fields{
			"addr":             cfg.Addr(),
			"version":          config.Version,
			"cache_size":       cfg.CacheSize,
			"graph_cache_size": cfg.GraphCacheSize,
			"auth":             cfg.AuthEnabled(),
			"events":           cfg.EnableEvents,
		}).Info("server starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}

	log.Info("server stopped")

	return nil
}
