package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/delivery/http/response"
	"github.com/user/crawler-console/internal/delivery/page"
	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
	"github.com/user/crawler-console/internal/usecase"
	"github.com/user/crawler-console/pkg/metrics"
	"github.com/user/crawler-console/pkg/utils"
)

const maxFormBytes = 1 << 20

// Pinger is a dependency whose health is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BundleWriter writes the loaded script dependencies as one script.
type BundleWriter interface {
	WriteBundle(w io.Writer) error
}

// Deps are the handler's collaborators. List and Table must share the table widget.
type Deps struct {
	List       *usecase.ListView
	Table      *page.Page
	API        repository.CrawlerAPI
	Docs       repository.DocumentSource
	Compiler   repository.SchemaCompiler
	EditorOpts usecase.FormEditorOptions
	Bundle     BundleWriter
	Checks     map[string]Pinger
	Ready      func() bool
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

type Handler struct {
	Deps
}

func NewHandler(deps Deps) *Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}
	if deps.Ready == nil {
		deps.Ready = func() bool { return true }
	}
	// Editors are built per request, so the submit guard has to outlive them.
	if deps.EditorOpts.Pending == nil {
		deps.EditorOpts.Pending = &usecase.PendingSet{}
	}
	return &Handler{Deps: deps}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := response.HealthResponse{Status: "ok", Assets: "loading"}
	if h.Ready() {
		resp.Assets = "ready"
	}
	if len(h.Checks) > 0 {
		resp.Checks = make(map[string]string, len(h.Checks))
	}
	for name, p := range h.Checks {
		if err := p.Ping(ctx); err != nil {
			h.Logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			resp.Checks[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "healthy"
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleAssets(w http.ResponseWriter, r *http.Request) {
	if h.Bundle == nil {
		h.writeJSONError(w, "no script bundle is served", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	if err := h.Bundle.WriteBundle(w); err != nil {
		h.Logger.Error("failed to write script bundle", zap.Error(err))
	}
}

// HandleListCrawlers renders the table. ?refresh=1 re-fetches the collection and
// ?height=N re-lays the table out for an N pixel viewport.
func (h *Handler) HandleListCrawlers(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("height"); raw != "" {
		height, err := strconv.Atoi(raw)
		if err != nil || height < 0 {
			h.writeJSONError(w, "height must be a non-negative integer", http.StatusBadRequest)
			return
		}
		h.List.Resize(height)
	}

	var err error
	if r.URL.Query().Get("refresh") != "" {
		err = h.List.Refresh(r.Context())
	} else {
		err = h.List.Show(r.Context())
	}
	if err != nil {
		h.writeJSONError(w, entity.ResponseText(err), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, response.TableResponse{Table: h.Table.Table()})
}

func (h *Handler) HandleRemoveCrawler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.writeJSONError(w, "crawler name is required", http.StatusBadRequest)
		return
	}

	err := h.List.OnRemove(r.Context(), entity.CrawlerRecord{CrawlerName: name})
	if err != nil {
		if errors.Is(err, usecase.ErrOperationPending) {
			h.writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		h.writeJSONError(w, entity.ResponseText(err), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, response.RemoveResponse{Removed: name, Table: h.Table.Table()})
}

func (h *Handler) HandleRowDetail(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		h.writeJSONError(w, "row index must be a non-negative integer", http.StatusBadRequest)
		return
	}

	p := page.New()
	ok, err := h.List.ExpandRow(r.Context(), index, p)
	if !ok {
		h.writeJSONError(w, "row has no detail", http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeJSONError(w, entity.ResponseText(err), http.StatusBadGateway)
		return
	}
	detail, _ := p.Detail(index)
	h.writeJSON(w, http.StatusOK, response.DetailResponse{Index: index, HTML: detail})
}

func (h *Handler) HandleEditCrawler(w http.ResponseWriter, r *http.Request) {
	location := h.List.EditLocation(entity.CrawlerRecord{CrawlerName: chi.URLParam(r, "name")})
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *Handler) HandleNewCrawler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.List.NewLocation(), http.StatusSeeOther)
}

func (h *Handler) newEditor(r *http.Request) (*usecase.FormEditor, *page.Page) {
	p := page.New()
	q := utils.ParseQueryContext(r.URL.RawQuery)
	e := usecase.NewFormEditor(q, h.API, h.Docs, h.Compiler, p, p, h.EditorOpts, h.Logger, h.Metrics)
	return e, p
}

func editorState(e *usecase.FormEditor, p *page.Page) response.EditorResponse {
	return response.EditorResponse{Mode: e.Mode().String(), Value: p.Value(), Indicator: p.Indicator()}
}

// HandleEditor opens the editor: empty in new mode, populated from the API when
// ?name= is present.
func (h *Handler) HandleEditor(w http.ResponseWriter, r *http.Request) {
	e, p := h.newEditor(r)
	if err := e.Ready(r.Context()); err != nil {
		h.writeJSON(w, http.StatusBadGateway, editorState(e, p))
		return
	}
	h.writeJSON(w, http.StatusOK, editorState(e, p))
}

func (h *Handler) HandleEditorRestore(w http.ResponseWriter, r *http.Request) {
	e, p := h.newEditor(r)
	if err := e.Restore(r.Context()); err != nil {
		h.writeJSONError(w, entity.ResponseText(err), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, editorState(e, p))
}

// HandleSubmitEditor validates the posted form value and, if it is valid, creates
// or updates the crawler it names.
func (h *Handler) HandleSubmitEditor(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	if err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	e, p := h.newEditor(r)
	if err := e.LoadSchema(r.Context()); err != nil {
		h.writeJSONError(w, entity.ResponseText(err), http.StatusBadGateway)
		return
	}
	if _, err := e.Change(body); err != nil {
		h.writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp, err := e.Submit(r.Context())
	state := editorState(e, p)
	state.Value = json.RawMessage(body)
	switch {
	case errors.Is(err, usecase.ErrOperationPending):
		h.writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, usecase.ErrInvalidForm):
		h.writeJSON(w, http.StatusUnprocessableEntity, state)
	case err != nil:
		h.writeJSON(w, http.StatusBadGateway, state)
	default:
		state.Response = resp
		h.writeJSON(w, http.StatusOK, state)
	}
}

// HandleTest runs a test crawl for ?name= and renders its result.
func (h *Handler) HandleTest(w http.ResponseWriter, r *http.Request) {
	h.showResult(w, r, usecase.VariantTest)
}

// HandleView renders the stored record for ?name=.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	h.showResult(w, r, usecase.VariantView)
}

func (h *Handler) showResult(w http.ResponseWriter, r *http.Request, variant usecase.ResultVariant) {
	q := utils.ParseQueryContext(r.URL.RawQuery)
	if q.NameOr("") == "" {
		h.writeJSONError(w, "name query parameter is required", http.StatusBadRequest)
		return
	}

	p := page.New()
	v := usecase.NewResultViewer(h.API, variant, p, p, h.Logger)
	if err := v.Init(r.Context(), q); err != nil {
		h.writeJSONError(w, p.LastAlert(), http.StatusBadGateway)
		return
	}

	doc, _ := p.Tree()
	tree, err := usecase.FormatTree(doc)
	if err != nil {
		tree = string(doc)
	}
	h.writeJSON(w, http.StatusOK, response.ResultResponse{Name: v.Input(), Tree: tree, Document: doc})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
