// Package storage opens the budget repository selected by the configuration.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/internal/config"
	"github.com/iwvelando/build-estimator/internal/storage/redis"
	"github.com/iwvelando/build-estimator/internal/storage/sqlite"
	"github.com/iwvelando/build-estimator/pkg/constants"
	"go.uber.org/zap"
)

// Open returns the repository for cfg.Backend. An empty backend selects the
// in-memory repository.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (budget.Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", constants.StorageMemory:
		logger.Info("keeping budgets in memory",
			zap.String("op", "storage.Open"),
		)
		return budget.NewMemoryRepository(), nil

	case constants.StorageSQLite:
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		logger.Info(fmt.Sprintf("keeping budgets in sqlite database %s", cfg.Path),
			zap.String("op", "storage.Open"),
		)
		return store, nil

	case constants.StorageRedis:
		var ttl time.Duration
		if strings.TrimSpace(cfg.TTL) != "" {
			parsed, err := time.ParseDuration(cfg.TTL)
			if err != nil {
				return nil, fmt.Errorf("invalid redis ttl %q: %w", cfg.TTL, err)
			}
			ttl = parsed
		}
		store, err := redis.Open(ctx, redis.Options{
			Address:   cfg.RedisAddress,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open redis storage: %w", err)
		}
		logger.Info(fmt.Sprintf("keeping budgets in redis at %s", cfg.RedisAddress),
			zap.String("op", "storage.Open"),
		)
		return store, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
