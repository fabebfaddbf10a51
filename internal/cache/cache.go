package cache

import (
	"context"
	"time"
)

// Cache is a key/value cache. Misses, disabled caches and backend failures
// all look like a miss to callers; the database stays the source of truth.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

const (
	PrefixPlan          = "plan:"
	PrefixPlanByProduct = "plan_by_product:"
)

// GenerateKey joins a prefix and an id.
func GenerateKey(prefix, id string) string {
	return prefix + id
}
