package repository

import (
	"context"

	"github.com/user/crawler-console/internal/entity"
)

// RowCache holds the table's current projection of the collection endpoint.
type RowCache interface {
	// Load returns the cached rows. ok is false on a miss.
	Load(ctx context.Context) (rows []entity.CrawlerRecord, ok bool, err error)
	// Save replaces the cached rows.
	Save(ctx context.Context, rows []entity.CrawlerRecord) error
}
