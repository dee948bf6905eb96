// Package bootstrap wires the runtime dependencies shared by the server and
// admin commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"pantry/internal/cache"
	"pantry/internal/config"
	"pantry/internal/database"
	"pantry/internal/middleware"
	"pantry/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to the database and Redis, prepares the media root and
// optionally seeds demo data. The Redis client is nil when REDIS_URL is empty
// or the server is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if cfg.RedisURL != "" {
		cache.InitRedis(cfg.RedisURL)
	}
	r := cache.GetClient()

	if err := ensureMediaRoot(cfg); err != nil {
		return nil, nil, err
	}

	if opts.SeedDemo {
		sum, err := seed.New(db, cfg, seed.Options{RecipesPerUser: 3}).Run(context.Background())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		middleware.Logger.Info("demo data seeded",
			slog.Int("users", sum.Users), slog.Int("recipes", sum.Recipes))
	}

	return db, r, nil
}

func ensureMediaRoot(cfg *config.Config) error {
	if cfg.MediaRoot == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		return fmt.Errorf("create media root %s: %w", cfg.MediaRoot, err)
	}
	return nil
}
