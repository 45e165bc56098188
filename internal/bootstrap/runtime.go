// Package bootstrap wires process-wide runtime dependencies for the executables.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stackit/internal/cache"
	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "stackit-api"

// Options control runtime initialization behavior.
type Options struct {
	// SeedFixtures inserts the sample content into an empty database.
	SeedFixtures bool
}

// InitObservability configures logging, tracing and error reporting. The returned
// shutdown flushes exporters and must be called before exit.
func InitObservability(cfg *config.Config, version string) (func(context.Context) error, error) {
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	stopTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, err
	}

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		_ = stopTracing(context.Background())
		return nil, err
	}

	return func(ctx context.Context) error {
		flushSentry()
		return stopTracing(ctx)
	}, nil
}

// InitRuntime connects to DB and Redis and optionally seeds sample content.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedFixtures {
		if err := seedIfEmpty(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed sample content: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(db *gorm.DB) error {
	var existing models.User
	err := db.Select("id").First(&existing).Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	fixtures, err := seed.LoadFixtures()
	if err != nil {
		return err
	}
	stats, err := seed.NewSeeder(db).SeedFixtures(fixtures)
	if err != nil {
		return err
	}
	middleware.Logger.Info("seeded sample content",
		slog.Int("users", stats.Users),
		slog.Int("questions", stats.Questions),
		slog.Int("answers", stats.Answers),
	)
	return nil
}
