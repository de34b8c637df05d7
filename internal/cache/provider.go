package cache

// Package cache provides short-lived caching for computed price breakdowns.
// Breakdown computation is cheap, but storefront pages recompute on every
// render; the cache absorbs that fan-out. Entries are keyed by table
// snapshot version, so a reload naturally invalidates everything.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Provider stores serialized breakdowns with a TTL.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// BreakdownKey builds a cache key from the table snapshot version and the
// raw request body. Version first: stale snapshots can never serve a hit.
func BreakdownKey(tablesVersion string, requestBody []byte) string {
	sum := sha256.Sum256(requestBody)
	return fmt.Sprintf("breakdown:%s:%s", tablesVersion, hex.EncodeToString(sum[:8]))
}
