package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/crawler-console/internal/entity"
)

const rowCacheKey = "console:crawlers:rows"

// RowCacheImpl stores the crawler table's rows in Redis so every console process
// shares the same projection.
type RowCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRowCache creates a Redis-backed row cache. A zero ttl keeps rows until replaced.
func NewRowCache(client *redis.Client, ttl time.Duration) *RowCacheImpl {
	return &RowCacheImpl{client: client, ttl: ttl}
}

// Load reads the cached rows. A missing key is a miss, not an error.
func (r *RowCacheImpl) Load(ctx context.Context) ([]entity.CrawlerRecord, bool, error) {
	val, err := r.client.Get(ctx, rowCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var rows []entity.CrawlerRecord
	if err := json.Unmarshal(val, &rows); err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// Save replaces the cached rows.
func (r *RowCacheImpl) Save(ctx context.Context, rows []entity.CrawlerRecord) error {
	if rows == nil {
		rows = []entity.CrawlerRecord{}
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, rowCacheKey, payload, r.ttl).Err()
}

// Ping checks the connection.
func (r *RowCacheImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
