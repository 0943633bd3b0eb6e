package repository

import (
	"context"

	"github.com/user/crawler-console/internal/entity"
)

// AssetLoader requests a single script and reports its progress.
type AssetLoader interface {
	// Load starts loading url. The returned channel delivers readiness signals and is
	// closed when the loader has nothing more to report.
	Load(ctx context.Context, url string) <-chan entity.LoadSignal
}
