// Package cache holds the TTL store for transformed article lists.
package cache

import (
	"context"
	"time"

	"github.com/nitesh/trendpulse-api/pkg/models"
)

// DefaultTTL is how long a cached listing stays fresh.
const DefaultTTL = 300 * time.Second

// Stats reports cache effectiveness since startup (or the last flush for Keys).
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Keys   int   `json:"keys"`
}

// Store is a key/value store whose entries expire a fixed TTL after Set.
// Implementations must be safe for concurrent use; a read never observes a
// partially written value.
type Store interface {
	Get(ctx context.Context, key string) ([]models.Article, bool)
	Set(ctx context.Context, key string, articles []models.Article)
	Keys(ctx context.Context) []string
	FlushAll(ctx context.Context) int
	Stats(ctx context.Context) Stats
	Close() error
}
