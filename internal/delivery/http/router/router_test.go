package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/adapter/httpapi"
	"github.com/user/crawler-console/internal/adapter/jsonschema"
	"github.com/user/crawler-console/internal/adapter/memory"
	"github.com/user/crawler-console/internal/delivery/http/handler"
	"github.com/user/crawler-console/internal/delivery/http/response"
	"github.com/user/crawler-console/internal/delivery/page"
	"github.com/user/crawler-console/internal/usecase"
	"github.com/user/crawler-console/pkg/metrics"
)

// crawlerService is a stand-in for the remote crawler API.
type crawlerService struct {
	mu      sync.Mutex
	rows    []map[string]any
	deletes []string
	posts   []string
	failDel bool
	hold    chan struct{} // holds create and update responses until closed
}

func (s *crawlerService) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/list/crawler", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"total": len(s.rows), "rows": s.rows})
	})
	mux.HandleFunc("GET /api/crawler/delete/{name}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.deletes = append(s.deletes, r.PathValue("name"))
		if s.failDel {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("crawler is running"))
			return
		}
		_, _ = w.Write([]byte(`{"status":"deleted"}`))
	})
	mux.HandleFunc("POST /api/crawler/{action}/{name}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.posts = append(s.posts, r.PathValue("action")+":"+r.PathValue("name"))
		hold := s.hold
		s.mu.Unlock()
		if hold != nil {
			<-hold
		}
		_, _ = w.Write([]byte(`{"status": "saved"}`))
	})
	mux.HandleFunc("GET /api/crawler/retrieve/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") != "news" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("no such crawler"))
			return
		}
		_, _ = w.Write([]byte(`{"crawler_name":"news","weight":3}`))
	})
	mux.HandleFunc("GET /api/test/{name}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"title":"hello"}]}`))
	})
	mux.HandleFunc("GET /static/schema.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"object","required":["crawler_name"],"properties":{"crawler_name":{"type":"string","minLength":1}}}`))
	})
	mux.HandleFunc("GET /static/default.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"crawler_name":"template"}`))
	})
	mux.HandleFunc("GET /LICENSE", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("MIT\nfree"))
	})
	return mux
}

func (s *crawlerService) failDeletes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDel = true
}

func (s *crawlerService) holdPosts() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = make(chan struct{})
	return s.hold
}

func (s *crawlerService) calls() (deletes, posts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...), append([]string(nil), s.posts...)
}

type bundle string

func (b bundle) WriteBundle(w io.Writer) error {
	_, err := io.WriteString(w, string(b))
	return err
}

type fixture struct {
	svc     *crawlerService
	console *httptest.Server
	ready   *atomic.Bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc := &crawlerService{rows: []map[string]any{
		{"crawler_name": "news", "status": "running", "weight": 3, "author": "ann", "create_time": 1700000000},
		{"crawler_name": "blogs", "status": "stopped", "weight": 1, "author": "bo"},
	}}
	api := httptest.NewServer(svc.routes())
	t.Cleanup(api.Close)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := httpapi.NewClient(api.URL, "/api/list/crawler", m)
	table := page.New()
	list := usecase.NewListView(client, client, memory.NewRowCache(), table, table, table, usecase.ListViewOptions{
		EditorURL:   "/console/editor",
		LicensePath: "/LICENSE",
	}, zap.NewNop())

	ready := &atomic.Bool{}
	h := handler.NewHandler(handler.Deps{
		List:       list,
		Table:      table,
		API:        client,
		Docs:       client,
		Compiler:   jsonschema.Compiler{},
		EditorOpts: usecase.FormEditorOptions{SchemaPath: "/static/schema.json", DefaultPath: "/static/default.json"},
		Bundle:     bundle("window.ready = true;"),
		Ready:      ready.Load,
		Logger:     zap.NewNop(),
		Metrics:    m,
	})
	console := httptest.NewServer(New(h, m, reg, zap.NewNop()))
	t.Cleanup(console.Close)
	return &fixture{svc: svc, console: console, ready: ready}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.console.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestRouter_ListGatedUntilReady(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/console/crawlers", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	f.ready.Store(true)
	resp, body := f.do(t, http.MethodGet, "/console/crawlers?height=900", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var table response.TableResponse
	require.NoError(t, json.Unmarshal(body, &table))
	require.Equal(t, []string{"news", "blogs"}, table.Names)
	require.Len(t, table.Columns, 7)
	require.Equal(t, "-", table.Rows[1][4])
	require.Equal(t, 900, table.Height)
}

func TestRouter_RemoveCrawler(t *testing.T) {
	f := newFixture(t)
	f.ready.Store(true)

	resp, body := f.do(t, http.MethodPost, "/console/crawlers/news/remove", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var removed response.RemoveResponse
	require.NoError(t, json.Unmarshal(body, &removed))
	require.Equal(t, "news", removed.Removed)
	require.Equal(t, []string{"blogs"}, removed.Table.Names)
	deletes, _ := f.svc.calls()
	require.Equal(t, []string{"news"}, deletes)
}

func TestRouter_RemoveFailureKeepsTable(t *testing.T) {
	f := newFixture(t)
	f.ready.Store(true)
	f.svc.failDeletes()

	resp, body := f.do(t, http.MethodPost, "/console/crawlers/news/remove", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.JSONEq(t, `{"error":"crawler is running"}`, string(body))

	_, body = f.do(t, http.MethodGet, "/console/crawlers", "")
	var table response.TableResponse
	require.NoError(t, json.Unmarshal(body, &table))
	require.Equal(t, []string{"news", "blogs"}, table.Names)
}

func TestRouter_RowDetail(t *testing.T) {
	f := newFixture(t)
	f.ready.Store(true)

	resp, _ := f.do(t, http.MethodGet, "/console/crawlers/rows/0/detail", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, "/console/crawlers/rows/1/detail", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"index":1,"html":"MIT<br>free"}`, string(body))
}

func TestRouter_EditRedirects(t *testing.T) {
	f := newFixture(t)
	f.ready.Store(true)

	resp, _ := f.do(t, http.MethodGet, "/console/crawlers/news/edit", "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/console/editor?name=news", resp.Header.Get("Location"))

	resp, _ = f.do(t, http.MethodGet, "/console/crawlers/new", "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/console/editor", resp.Header.Get("Location"))
}

func TestRouter_Editor(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/console/editor?name=news", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state response.EditorResponse
	require.NoError(t, json.Unmarshal(body, &state))
	require.Equal(t, "edit", state.Mode)
	require.JSONEq(t, `{"crawler_name":"news","weight":3}`, string(state.Value))

	resp, body = f.do(t, http.MethodGet, "/console/editor?name=ghost", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	state = response.EditorResponse{}
	require.NoError(t, json.Unmarshal(body, &state))
	require.Equal(t, "no such crawler", state.Indicator.Text)

	resp, body = f.do(t, http.MethodGet, "/console/editor/restore", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = response.EditorResponse{}
	require.NoError(t, json.Unmarshal(body, &state))
	require.Equal(t, "new", state.Mode)
	require.JSONEq(t, `{"crawler_name":"template"}`, string(state.Value))
}

func TestRouter_SubmitEditor(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/console/editor", `{"crawler_name":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var state response.EditorResponse
	require.NoError(t, json.Unmarshal(body, &state))
	require.Contains(t, state.Indicator.Text, "root.crawler_name")
	_, posts := f.svc.calls()
	require.Empty(t, posts)

	resp, body = f.do(t, http.MethodPost, "/console/editor", `{"crawler_name":"fresh"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = response.EditorResponse{}
	require.NoError(t, json.Unmarshal(body, &state))
	require.True(t, state.Indicator.OK)
	require.Equal(t, `{"status":"saved"}`, state.Indicator.Text)

	resp, _ = f.do(t, http.MethodPost, "/console/editor?name=news", `{"crawler_name":"renamed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, posts = f.svc.calls()
	require.Equal(t, []string{"create:fresh", "update:renamed"}, posts)
}

func TestRouter_SubmitEditorRejectsDuplicateInFlight(t *testing.T) {
	f := newFixture(t)
	hold := f.svc.holdPosts()

	first := make(chan int, 1)
	go func() {
		resp, err := http.Post(f.console.URL+"/console/editor", "application/json", strings.NewReader(`{"crawler_name":"fresh"}`))
		if err != nil {
			first <- 0
			return
		}
		resp.Body.Close()
		first <- resp.StatusCode
	}()
	require.Eventually(t, func() bool {
		_, posts := f.svc.calls()
		return len(posts) == 1
	}, 2*time.Second, 5*time.Millisecond)

	resp, body := f.do(t, http.MethodPost, "/console/editor", `{"crawler_name":"fresh"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, string(body), "still pending")

	close(hold)
	require.Equal(t, http.StatusOK, <-first)
	_, posts := f.svc.calls()
	require.Equal(t, []string{"create:fresh"}, posts)
}

func TestRouter_TestAndView(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/console/test?name=foo", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result response.ResultResponse
	require.NoError(t, json.Unmarshal(body, &result))
	require.Equal(t, "foo", result.Name)
	require.JSONEq(t, `{"items":[{"title":"hello"}]}`, string(result.Document))
	require.Contains(t, result.Tree, "\n  \"items\"")

	resp, body = f.do(t, http.MethodGet, "/console/view?name=ghost", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.JSONEq(t, `{"error":"no such crawler"}`, string(body))

	resp, _ = f.do(t, http.MethodGet, "/console/view", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_HealthAssetsMetrics(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok","assets":"loading"}`, string(body))

	resp, body = f.do(t, http.MethodGet, "/console/assets.js", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "window.ready = true;", string(body))

	resp, body = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "console_http_requests_total")
}
