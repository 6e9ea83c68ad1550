package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
	"babelfeed/internal/logger"
	"babelfeed/pkg/metrics"
)

// Redis shares translations across instances. Entries expire by TTL rather
// than LRU count; redis itself bounds memory. Any redis error degrades to a
// miss so the pipeline never sees a cache failure.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedis(client *redis.Client, cfg config.RedisConfig, log logger.Logger) *Redis {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (r *Redis) Lookup(ctx context.Context, text, targetLang string) (string, bool) {
	val, err := r.client.Get(ctx, r.key(text, targetLang)).Result()
	if err == redis.Nil {
		metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendRedis, "miss").Inc()
		return "", false
	}
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendRedis, "error").Inc()
		r.logger.WarnwCtx(ctx, "Redis lookup failed, treating as miss",
			"error", err,
		)
		return "", false
	}

	// Refresh recency: a hit extends the entry's lifetime.
	if err := r.client.Expire(ctx, r.key(text, targetLang), r.ttl).Err(); err != nil {
		r.logger.DebugwCtx(ctx, "Redis expire refresh failed",
			"error", err,
		)
	}

	metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendRedis, "hit").Inc()
	return val, true
}

func (r *Redis) Insert(ctx context.Context, text, targetLang, translated string) {
	if err := r.client.Set(ctx, r.key(text, targetLang), translated, r.ttl).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendRedis, "error").Inc()
		r.logger.WarnwCtx(ctx, "Redis insert failed",
			"error", err,
		)
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendRedis, "insert").Inc()
}

func (r *Redis) key(text, targetLang string) string {
	sum := sha256.Sum256([]byte(NormalizeKey(text, targetLang)))
	return constants.CacheKeyPrefixTranslation + hex.EncodeToString(sum[:])
}
