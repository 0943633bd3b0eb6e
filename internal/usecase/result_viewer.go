package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

// ResultVariant selects the endpoint a ResultViewer reads from.
type ResultVariant int

const (
	// VariantTest runs a test crawl and shows its result.
	VariantTest ResultVariant = iota
	// VariantView shows the stored record.
	VariantView
)

const viewerLoadingText = "loading..."

// ResultViewer fetches a JSON document by name and renders it as a tree.
type ResultViewer struct {
	api     repository.CrawlerAPI
	variant ResultVariant
	tree    repository.TreePane
	alert   repository.Alerter
	logger  *zap.Logger

	mu    sync.Mutex
	input string
}

func NewResultViewer(api repository.CrawlerAPI, variant ResultVariant, tree repository.TreePane, alert repository.Alerter, logger *zap.Logger) *ResultViewer {
	return &ResultViewer{api: api, variant: variant, tree: tree, alert: alert, logger: logger}
}

// Input is the name currently in the input box.
func (v *ResultViewer) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input
}

// Init pre-fills the input from q and shows the result when a name was supplied.
// The name is trimmed like typed input, so a blank name shows nothing.
func (v *ResultViewer) Init(ctx context.Context, q entity.QueryContext) error {
	if !q.HasName() {
		return nil
	}
	return v.Submit(ctx, q.NameOr(""))
}

// Submit shows the result for the name typed by the user. Blank input is ignored.
func (v *ResultViewer) Submit(ctx context.Context, input string) error {
	name := strings.TrimSpace(input)
	v.mu.Lock()
	v.input = name
	v.mu.Unlock()
	if name == "" {
		return nil
	}
	return v.Show(ctx, name)
}

// Show fetches the document for name and renders it. A failure raises one alert with
// the raw response text and renders nothing.
func (v *ResultViewer) Show(ctx context.Context, name string) error {
	var (
		doc json.RawMessage
		err error
	)
	if v.variant == VariantTest {
		v.tree.ShowLoading(viewerLoadingText)
		doc, err = v.api.Test(ctx, name)
	} else {
		doc, err = v.api.Retrieve(ctx, name)
	}
	if err != nil {
		v.logger.Warn("failed to fetch result", zap.String("crawler_name", name), zap.Error(err))
		v.alert.Alert(entity.ResponseText(err))
		return fmt.Errorf("fetching result for %s: %w", name, err)
	}
	v.tree.ShowTree(doc)
	return nil
}
