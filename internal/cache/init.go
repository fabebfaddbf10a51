package cache

import (
	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/logger"
	redisClient "github.com/bldrfitness/bldr/internal/redis"
)

// CacheType represents the type of cache to use
type CacheType string

const (
	// CacheTypeInMemory represents an in-memory cache
	CacheTypeInMemory CacheType = "inmemory"

	// CacheTypeRedis represents a Redis-backed cache
	CacheTypeRedis CacheType = "redis"
)

// Initialize builds the configured cache. A Redis cache that cannot connect
// falls back to the in-memory cache rather than failing startup.
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache", "type", cfg.Cache.Type, "enabled", cfg.Cache.Enabled)

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeRedis:
		client, err := redisClient.NewClient(cfg.Redis, log)
		if err != nil {
			log.Errorw("redis cache unavailable, using in-memory cache", "error", err)
			return NewInMemoryCache(cfg.Cache.Enabled)
		}
		return NewRedisCache(client, log, cfg.Cache.Enabled)
	case CacheTypeInMemory:
		fallthrough
	default:
		return NewInMemoryCache(cfg.Cache.Enabled)
	}
}
