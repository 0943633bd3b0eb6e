package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
	"github.com/user/crawler-console/pkg/metrics"
)

// EditorMode is fixed once from the query context and never re-derived.
type EditorMode int

const (
	// ModeNew creates a record; no name was supplied.
	ModeNew EditorMode = iota
	// ModeEdit updates the record named in the query context.
	ModeEdit
)

func (m EditorMode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "new"
}

const (
	indicatorValid   = "valid"
	indicatorInvalid = "not valid"
)

// FormEditorOptions locates the editor's static documents.
type FormEditorOptions struct {
	SchemaPath  string
	DefaultPath string

	// Pending is shared by editors that must not submit the same record at once.
	// Each editor guards only itself when nil.
	Pending *PendingSet
}

// FormEditor drives the schema-driven editor: it validates every change and submits
// the value to the create or update endpoint depending on its mode.
type FormEditor struct {
	api       repository.CrawlerAPI
	docs      repository.DocumentSource
	compiler  repository.SchemaCompiler
	form      repository.FormWidget
	indicator repository.Indicator
	opts      FormEditorOptions
	logger    *zap.Logger
	metrics   *metrics.Metrics

	mode      EditorMode
	queryName string

	mu         sync.Mutex
	validator  repository.SchemaValidator
	value      json.RawMessage
	submitting bool
}

// NewFormEditor creates an editor whose mode is decided by q.
func NewFormEditor(
	q entity.QueryContext,
	api repository.CrawlerAPI,
	docs repository.DocumentSource,
	compiler repository.SchemaCompiler,
	form repository.FormWidget,
	indicator repository.Indicator,
	opts FormEditorOptions,
	logger *zap.Logger,
	m *metrics.Metrics,
) *FormEditor {
	if m == nil {
		m = metrics.NewNop()
	}
	if opts.Pending == nil {
		opts.Pending = &PendingSet{}
	}
	e := &FormEditor{
		api:       api,
		docs:      docs,
		compiler:  compiler,
		form:      form,
		indicator: indicator,
		opts:      opts,
		logger:    logger,
		metrics:   m,
	}
	if q.HasName() {
		e.mode = ModeEdit
		e.queryName = q.NameOr("")
	}
	return e
}

// Mode is the editor's fixed mode.
func (e *FormEditor) Mode() EditorMode { return e.mode }

// Value is the form's current value.
func (e *FormEditor) Value() json.RawMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append(json.RawMessage(nil), e.value...)
}

// Ready compiles the schema and, in edit mode, populates the form with the record
// named in the query context. A failed retrieve is shown on the indicator and leaves
// the form empty.
func (e *FormEditor) Ready(ctx context.Context) error {
	if err := e.LoadSchema(ctx); err != nil {
		return err
	}
	if e.mode != ModeEdit {
		return nil
	}

	record, err := e.api.Retrieve(ctx, e.queryName)
	if err != nil {
		e.logger.Warn("failed to retrieve crawler", zap.String("crawler_name", e.queryName), zap.Error(err))
		e.indicator.Set(false, entity.ResponseText(err))
		return fmt.Errorf("retrieving %s: %w", e.queryName, err)
	}
	e.setValue(record)
	return nil
}

// LoadSchema fetches and compiles the form schema without touching the form value.
func (e *FormEditor) LoadSchema(ctx context.Context) error {
	schema, err := e.docs.FetchDocument(ctx, e.opts.SchemaPath)
	if err != nil {
		return fmt.Errorf("fetching form schema: %w", err)
	}
	v, err := e.compiler.Compile(schema)
	if err != nil {
		return fmt.Errorf("compiling form schema: %w", err)
	}
	e.mu.Lock()
	e.validator = v
	e.mu.Unlock()
	return nil
}

// Restore resets the form to the template default.
func (e *FormEditor) Restore(ctx context.Context) error {
	doc, err := e.docs.FetchDocument(ctx, e.opts.DefaultPath)
	if err != nil {
		return fmt.Errorf("fetching template default: %w", err)
	}
	if !json.Valid(doc) {
		return errors.New("template default is not valid JSON")
	}
	e.setValue(doc)
	return nil
}

func (e *FormEditor) setValue(value json.RawMessage) {
	e.mu.Lock()
	e.value = append(json.RawMessage(nil), value...)
	e.mu.Unlock()
	e.form.SetValue(value)
}

// Change records a new form value and re-runs validation, marking the indicator
// valid or not valid.
func (e *FormEditor) Change(value json.RawMessage) (entity.ValidationResult, error) {
	e.mu.Lock()
	e.value = append(json.RawMessage(nil), value...)
	e.mu.Unlock()

	result, err := e.validate(value)
	if err != nil {
		e.indicator.Set(false, indicatorInvalid)
		return entity.ValidationResult{}, err
	}
	if result.Valid() {
		e.indicator.Set(true, indicatorValid)
	} else {
		e.indicator.Set(false, indicatorInvalid)
	}
	return result, nil
}

func (e *FormEditor) validate(value json.RawMessage) (entity.ValidationResult, error) {
	e.mu.Lock()
	v := e.validator
	e.mu.Unlock()
	if v == nil {
		return entity.ValidationResult{}, ErrSchemaNotLoaded
	}

	var decoded any
	if err := json.Unmarshal(value, &decoded); err != nil {
		return entity.ValidationResult{
			Violations: []entity.Violation{{Path: "root", Message: "value is not valid JSON"}},
		}, nil
	}
	return v.Validate(decoded), nil
}

// Submit validates the current value and sends it to the create endpoint in new mode
// or the update endpoint in edit mode. The request path uses the value's own
// crawler_name. The form value is never changed by a submit. A second submit of the
// same record in the same mode fails with ErrOperationPending while the first is in
// flight.
func (e *FormEditor) Submit(ctx context.Context) (json.RawMessage, error) {
	e.mu.Lock()
	if e.submitting {
		e.mu.Unlock()
		return nil, ErrOperationPending
	}
	e.submitting = true
	value := append(json.RawMessage(nil), e.value...)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.submitting = false
		e.mu.Unlock()
	}()

	result, err := e.validate(value)
	if err != nil {
		return nil, err
	}
	if first, bad := result.First(); bad {
		e.metrics.ValidationFailures.Inc()
		e.indicator.Set(false, first.String())
		return nil, fmt.Errorf("%w: %s", ErrInvalidForm, first)
	}

	var named struct {
		CrawlerName string `json:"crawler_name"`
	}
	// Validation passed, so the value is well-formed JSON.
	_ = json.Unmarshal(value, &named)

	key := e.mode.String() + ":" + named.CrawlerName
	if err := e.opts.Pending.Acquire(key); err != nil {
		return nil, err
	}
	defer e.opts.Pending.Release(key)

	var resp json.RawMessage
	if e.mode == ModeEdit {
		resp, err = e.api.Update(ctx, named.CrawlerName, value)
	} else {
		resp, err = e.api.Create(ctx, named.CrawlerName, value)
	}
	if err != nil {
		e.logger.Warn("failed to submit crawler",
			zap.String("mode", e.mode.String()), zap.String("crawler_name", named.CrawlerName), zap.Error(err))
		e.indicator.Set(false, entity.ResponseText(err))
		return nil, fmt.Errorf("submitting %s: %w", named.CrawlerName, err)
	}

	e.indicator.Set(true, compactJSON(resp))
	e.logger.Info("crawler submitted", zap.String("mode", e.mode.String()), zap.String("crawler_name", named.CrawlerName))
	return resp, nil
}
