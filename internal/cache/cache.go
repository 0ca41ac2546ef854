// Package cache provides a small string cache used to keep dashboard stats
// cheap to serve. Redis backs it when configured, otherwise a no-op stand-in
// keeps the call sites unconditional.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized values under string keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
