package repository

import (
	"context"
	"encoding/json"

	"github.com/user/crawler-console/internal/entity"
)

// ListOptions narrows a collection fetch. Zero values mean "server default".
type ListOptions struct {
	Offset int
	Limit  int
	Search string // name prefix
}

// CrawlerAPI defines the contract of the remote crawler CRUD service.
type CrawlerAPI interface {
	// List fetches the collection endpoint.
	List(ctx context.Context, opts ListOptions) (*entity.CrawlerList, error)
	// Create posts a new record under name.
	Create(ctx context.Context, name string, record json.RawMessage) (json.RawMessage, error)
	// Update posts a replacement record under name.
	Update(ctx context.Context, name string, record json.RawMessage) (json.RawMessage, error)
	// Delete removes the record addressed by name.
	Delete(ctx context.Context, name string) error
	// Retrieve fetches a single record as raw JSON.
	Retrieve(ctx context.Context, name string) (json.RawMessage, error)
	// Test runs a test crawl for name and returns its arbitrary JSON result.
	Test(ctx context.Context, name string) (json.RawMessage, error)
}

// DocumentSource fetches static documents (schema, template default, license text)
// published next to the API.
type DocumentSource interface {
	FetchDocument(ctx context.Context, path string) ([]byte, error)
}
