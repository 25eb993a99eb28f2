package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/craftmarkt/craftmarkt/internal/pkg/cache"
)

// queueRepository implements the QueueRepository interface. Admin tooling
// uses it to inspect the billing job backlog, open dedupe windows and
// pending counters, and to clear stale dedupe state.
type queueRepository struct {
	// operates on Redis, not GORM
}

// NewQueueRepository creates a new queue repository instance
func NewQueueRepository() QueueRepository {
	return &queueRepository{}
}

// GetListLength returns the length of a redis list, e.g. the job queue backlog
func (r *queueRepository) GetListLength(key string) (int64, error) {
	redisClient := cache.GetClient()
	ctx := context.Background()

	length, err := redisClient.LLen(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	return length, nil
}

// GetTTL returns how long a key (e.g. a dedupe window) still has to live
func (r *queueRepository) GetTTL(key string) (time.Duration, error) {
	redisClient := cache.GetClient()
	ctx := context.Background()

	ttl, err := redisClient.TTL(ctx, key).Result()
	if err != nil {
		return -1, err
	}

	return ttl, nil
}

// FindKeysByPatterns retrieves keys for the provided redis match patterns using SCAN.
func (r *queueRepository) FindKeysByPatterns(patterns []string) ([]string, error) {
	redisClient := cache.GetClient()
	ctx := context.Background()

	uniqueKeys := make(map[string]struct{})

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		var cursor uint64
		for {
			keys, nextCursor, err := redisClient.Scan(ctx, cursor, pattern, 500).Result()
			if err != nil {
				return nil, err
			}

			for _, key := range keys {
				uniqueKeys[key] = struct{}{}
			}

			cursor = nextCursor
			if cursor == 0 {
				break
			}
		}
	}

	keys := make([]string, 0, len(uniqueKeys))
	for key := range uniqueKeys {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys, nil
}

// DeleteKeys deletes keys in batches and returns the total number of deleted keys.
func (r *queueRepository) DeleteKeys(keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	redisClient := cache.GetClient()
	ctx := context.Background()

	const batchSize = 500
	var totalDeleted int64

	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}

		deleted, err := redisClient.Del(ctx, keys[i:end]...).Result()
		if err != nil {
			return totalDeleted, err
		}
		totalDeleted += deleted
	}

	return totalDeleted, nil
}

// ClearDedupeWindows drops every open dedupe window for a listing, so a
// relisted or corrected product can receive billable views again right away.
func (r *queueRepository) ClearDedupeWindows(productID uint) (int64, error) {
	keys, err := r.FindKeysByPatterns([]string{fmt.Sprintf("views:dedupe:%d:*", productID)})
	if err != nil {
		return 0, err
	}
	return r.DeleteKeys(keys)
}
