package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
	"babelfeed/internal/logger"
)

// New builds the configured cache backend. The redis client is nil unless
// the redis backend is selected; the caller owns its lifecycle.
func New(cfg config.CacheConfig, log logger.Logger) (Cache, *redis.Client, error) {
	switch cfg.Backend {
	case constants.CacheBackendMemory:
		return NewMemory(cfg.Capacity), nil, nil
	case constants.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedis(client, cfg.Redis, log), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
