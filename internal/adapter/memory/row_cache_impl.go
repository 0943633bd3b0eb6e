package memory

import (
	"context"
	"sync"

	"github.com/user/crawler-console/internal/entity"
)

// RowCacheImpl keeps the table rows in process memory.
type RowCacheImpl struct {
	mu    sync.RWMutex
	rows  []entity.CrawlerRecord
	valid bool
}

// NewRowCache creates an empty in-memory row cache.
func NewRowCache() *RowCacheImpl {
	return &RowCacheImpl{}
}

func (c *RowCacheImpl) Load(ctx context.Context) ([]entity.CrawlerRecord, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return nil, false, nil
	}
	return append([]entity.CrawlerRecord(nil), c.rows...), true, nil
}

func (c *RowCacheImpl) Save(ctx context.Context, rows []entity.CrawlerRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append([]entity.CrawlerRecord(nil), rows...)
	c.valid = true
	return nil
}
