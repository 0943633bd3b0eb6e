package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/crawler-console/internal/entity"
)

func TestRowCache_LoadSave(t *testing.T) {
	ctx := context.Background()
	c := NewRowCache()

	_, ok, err := c.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	rows := []entity.CrawlerRecord{{CrawlerName: "a"}, {CrawlerName: "b"}}
	require.NoError(t, c.Save(ctx, rows))
	rows[0].CrawlerName = "mutated"

	got, ok, err := c.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", got[0].CrawlerName)

	// An empty table is still a hit.
	require.NoError(t, c.Save(ctx, nil))
	got, ok, err = c.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, got)
}
