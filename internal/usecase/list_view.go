package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

const (
	defaultEditorURL     = "/editor/"
	defaultRelayoutDelay = 200 * time.Millisecond
	detailLoadingText    = "Loading from ajax request..."
)

// ListViewOptions configures a ListView. Zero values select the defaults.
type ListViewOptions struct {
	EditorURL     string
	LicensePath   string
	RelayoutDelay time.Duration
	Heading       entity.Box
	List          repository.ListOptions

	// AfterFunc schedules f after d; time.AfterFunc when nil.
	AfterFunc func(d time.Duration, f func())
}

// ListView keeps the crawler table consistent with the collection endpoint. Its rows
// live in the row cache and only change through ReduceRows.
type ListView struct {
	api    repository.CrawlerAPI
	docs   repository.DocumentSource
	cache  repository.RowCache
	widget repository.TableWidget
	nav    repository.Navigator
	alert  repository.Alerter
	logger *zap.Logger
	opts   ListViewOptions

	// rowsMu serializes every load-modify-save of the cached rows.
	rowsMu  sync.Mutex
	pending PendingSet

	mu     sync.Mutex
	height int
	total  int64
}

// NewListView wires a list view to its collaborators.
func NewListView(
	api repository.CrawlerAPI,
	docs repository.DocumentSource,
	cache repository.RowCache,
	widget repository.TableWidget,
	nav repository.Navigator,
	alert repository.Alerter,
	opts ListViewOptions,
	logger *zap.Logger,
) *ListView {
	if opts.EditorURL == "" {
		opts.EditorURL = defaultEditorURL
	}
	if opts.RelayoutDelay <= 0 {
		opts.RelayoutDelay = defaultRelayoutDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return &ListView{
		api:    api,
		docs:   docs,
		cache:  cache,
		widget: widget,
		nav:    nav,
		alert:  alert,
		logger: logger,
		opts:   opts,
	}
}

// Initialize configures the table, fetches the collection and lays the table out for
// viewportHeight. A forced re-layout follows shortly after the first render because
// the widget sometimes draws its footer wrongly.
func (v *ListView) Initialize(ctx context.Context, viewportHeight int) error {
	v.widget.Configure(Columns())
	v.Resize(viewportHeight)

	err := v.Refresh(ctx)
	v.opts.AfterFunc(v.opts.RelayoutDelay, func() {
		v.widget.ResetView(0)
	})
	return err
}

// Show configures the table and renders the cached rows, reading through to the
// collection endpoint on a miss.
func (v *ListView) Show(ctx context.Context) error {
	v.rowsMu.Lock()
	defer v.rowsMu.Unlock()
	rows, err := v.rowsLocked(ctx)
	if err != nil {
		return err
	}
	v.widget.Configure(Columns())
	v.widget.Render(rows)
	return nil
}

// Resize re-applies the layout height for a new viewport height.
func (v *ListView) Resize(viewportHeight int) {
	h := TableHeight(viewportHeight, v.opts.Heading)
	v.mu.Lock()
	v.height = h
	v.mu.Unlock()
	v.widget.ResetView(h)
}

// Height is the current layout height.
func (v *ListView) Height() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// Refresh replaces the rows with a fresh collection fetch. On failure the rows are
// left as they were.
func (v *ListView) Refresh(ctx context.Context) error {
	v.rowsMu.Lock()
	defer v.rowsMu.Unlock()
	return v.refreshLocked(ctx)
}

// refreshLocked requires rowsMu.
func (v *ListView) refreshLocked(ctx context.Context) error {
	list, err := v.api.List(ctx, v.opts.List)
	if err != nil {
		v.logger.Error("failed to fetch crawler list", zap.Error(err))
		return fmt.Errorf("fetching crawler list: %w", err)
	}

	rows := ReduceRows(nil, RowsLoaded{Rows: list.Rows})
	if err := v.cache.Save(ctx, rows); err != nil {
		return fmt.Errorf("caching crawler rows: %w", err)
	}
	v.mu.Lock()
	v.total = list.Total
	v.mu.Unlock()
	v.widget.Render(rows)
	return nil
}

// Total is the collection size reported by the last fetch.
func (v *ListView) Total() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

// Rows returns the current rows, fetching the collection on a cache miss.
func (v *ListView) Rows(ctx context.Context) ([]entity.CrawlerRecord, error) {
	v.rowsMu.Lock()
	defer v.rowsMu.Unlock()
	return v.rowsLocked(ctx)
}

// rowsLocked requires rowsMu.
func (v *ListView) rowsLocked(ctx context.Context) ([]entity.CrawlerRecord, error) {
	rows, ok, err := v.cache.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cached rows: %w", err)
	}
	if ok {
		return rows, nil
	}
	if err := v.refreshLocked(ctx); err != nil {
		return nil, err
	}
	rows, _, err = v.cache.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cached rows: %w", err)
	}
	return rows, nil
}

// EditLocation is the editor page for row.
func (v *ListView) EditLocation(row entity.CrawlerRecord) string {
	return v.opts.EditorURL + "?name=" + url.QueryEscape(row.CrawlerName)
}

// NewLocation is the editor page in create mode.
func (v *ListView) NewLocation() string {
	return v.opts.EditorURL
}

// OnEdit opens the editor for row.
func (v *ListView) OnEdit(row entity.CrawlerRecord) {
	v.nav.Open(v.EditLocation(row))
}

// OnAddNew opens the editor in create mode.
func (v *ListView) OnAddNew() {
	v.nav.Open(v.NewLocation())
}

// OnRemove deletes row on the server and, only once that succeeded, drops every row
// with its name from the table. A failure is alerted with the raw response text and
// leaves the rows untouched.
func (v *ListView) OnRemove(ctx context.Context, row entity.CrawlerRecord) error {
	name := row.CrawlerName
	if err := v.pending.Acquire(name); err != nil {
		return err
	}
	defer v.pending.Release(name)

	if err := v.api.Delete(ctx, name); err != nil {
		v.logger.Warn("failed to delete crawler", zap.String("crawler_name", name), zap.Error(err))
		v.alert.Alert(entity.ResponseText(err))
		return fmt.Errorf("deleting %s: %w", name, err)
	}

	v.rowsMu.Lock()
	defer v.rowsMu.Unlock()
	rows, err := v.rowsLocked(ctx)
	if err != nil {
		return err
	}
	next := ReduceRows(rows, RowRemoved{Name: name})
	if err := v.cache.Save(ctx, next); err != nil {
		return fmt.Errorf("caching crawler rows: %w", err)
	}
	v.widget.Render(next)
	v.logger.Info("crawler deleted", zap.String("crawler_name", name))
	return nil
}

// ExpandRow shows the detail of the row at index. Only odd rows have a detail; for
// them the pane shows a placeholder while the license text is fetched. ok reports
// whether the row has a detail at all.
func (v *ListView) ExpandRow(ctx context.Context, index int, pane repository.DetailPane) (ok bool, err error) {
	if index%2 != 1 {
		return false, nil
	}
	pane.ShowDetail(index, detailLoadingText)

	text, err := v.docs.FetchDocument(ctx, v.opts.LicensePath)
	if err != nil {
		v.logger.Warn("failed to fetch row detail", zap.Int("index", index), zap.Error(err))
		return true, fmt.Errorf("fetching row detail: %w", err)
	}
	pane.ShowDetail(index, DetailHTML(string(text)))
	return true, nil
}
