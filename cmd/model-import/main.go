// Command model-import stores a model JSON file (plain or gzipped, bare or
// wrapped in {"data": ...}) as the next saved version of a model.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jsfong/model-parser/internal/config"
	"github.com/jsfong/model-parser/internal/db"
	"github.com/jsfong/model-parser/internal/db/migrations"
	"github.com/jsfong/model-parser/internal/dbpool"
	"github.com/jsfong/model-parser/internal/store"
)

var (
	flagModelID string
	flagDryRun  bool
	flagMigrate bool
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rootCmd := &cobra.Command{
		Use:          "model-import <file|->",
		Short:        "Import a model JSON file as a new saved version",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		Version:      config.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), log, args[0])
		},
	}

	rootCmd.Flags().StringVar(&flagModelID, "model-id", "", "Model id to save under (default: the modelId field of the file)")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Validate the file without writing to the database")
	rootCmd.Flags().BoolVar(&flagMigrate, "migrate", false, "Apply pending schema migrations before importing")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runImport(ctx context.Context, log *logrus.Logger, path string) error {
	raw, err := readInput(path)
	if err != nil {
		return err
	}

	p, err := prepare(raw, flagModelID)
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"model_id":      p.modelID,
		"elements":      len(p.model.Elements),
		"relationships": len(p.model.Relationships),
		"payload_bytes": len(p.compressed),
	}

	if flagDryRun {
		log.WithFields(fields).Info("dry run: model is valid, nothing written")

		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), 1)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if flagMigrate {
		if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
			return err
		}
	}

	ver, err := store.NewModelStore(pool, log).SaveModel(ctx, p.modelID, p.compressed)
	if err != nil {
		return err
	}

	fields["version"] = ver
	log.WithFields(fields).Info("model imported")

	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}
