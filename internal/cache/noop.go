package cache

import (
	"context"
	"time"
)

// NoopCache satisfies Cache without storing anything. Used when no Redis
// address is configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) Get(ctx context.Context, key string) (string, bool) { return "", false }

func (NoopCache) Set(ctx context.Context, key, value string, ttl time.Duration) error { return nil }

func (NoopCache) Delete(ctx context.Context, key string) error { return nil }
