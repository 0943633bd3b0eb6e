package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

// testHandler captures the incoming request and returns a canned response.
type testHandler struct {
	method  string
	path    string
	rawPath string
	query   string
	body    string
	calls   int

	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	h.method = r.Method
	h.path = r.URL.Path
	h.rawPath = r.URL.RawPath
	h.query = r.URL.RawQuery
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	}
	_, _ = w.Write([]byte(h.responseBody))
}

func newTestClient(h http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(h)
	return NewClient(srv.URL, "/api/list/crawler", nil), srv
}

func TestClient_List(t *testing.T) {
	h := &testHandler{responseBody: `{"total": 2, "rows": [
		{"crawler_name": "news", "status": "running", "weight": 3, "author": "ann", "create_time": 1700000000, "modify_time": 0},
		{"crawler_name": "blogs", "status": "stopped", "weight": 1.5, "author": "bo", "conf": {"crawler_type": "navigation"}}
	]}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	list, err := c.List(context.Background(), repository.ListOptions{Offset: 10, Limit: 5, Search: "ne"})
	require.NoError(t, err)

	require.Equal(t, http.MethodGet, h.method)
	require.Equal(t, "/api/list/crawler", h.path)
	require.Equal(t, "limit=5&offset=10&search=ne", h.query)

	require.EqualValues(t, 2, list.Total)
	require.Len(t, list.Rows, 2)
	require.Equal(t, "news", list.Rows[0].CrawlerName)
	require.EqualValues(t, 1700000000, list.Rows[0].CreateTime)
	require.Equal(t, 1.5, list.Rows[1].Weight)
	require.JSONEq(t, `{"crawler_type": "navigation"}`, string(list.Rows[1].Conf))
}

func TestClient_ListRejectsMalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no rows", `{"total": 0}`},
		{"row without name", `{"rows": [{"status": "x"}]}`},
		{"not json", `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(&testHandler{responseBody: tt.body})
			defer srv.Close()

			_, err := c.List(context.Background(), repository.ListOptions{})
			require.Error(t, err)
		})
	}
}

func TestClient_CreateAndUpdate(t *testing.T) {
	h := &testHandler{responseBody: `{"status":"ok"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	record := json.RawMessage(`{"crawler_name":"news"}`)

	resp, err := c.Create(context.Background(), "news", record)
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, h.method)
	require.Equal(t, "/api/crawler/create/news", h.path)
	require.JSONEq(t, `{"crawler_name":"news"}`, h.body)
	require.JSONEq(t, `{"status":"ok"}`, string(resp))

	_, err = c.Update(context.Background(), "news", record)
	require.NoError(t, err)
	require.Equal(t, "/api/crawler/update/news", h.path)
	require.Equal(t, 2, h.calls)
}

func TestClient_DeleteEscapesName(t *testing.T) {
	h := &testHandler{}
	c, srv := newTestClient(h)
	defer srv.Close()

	require.NoError(t, c.Delete(context.Background(), "a/b c"))
	require.Equal(t, http.MethodGet, h.method)
	require.Equal(t, "/api/crawler/delete/a/b c", h.path)
	require.Equal(t, "/api/crawler/delete/a%2Fb%20c", h.rawPath)
}

func TestClient_ErrorKeepsRawBody(t *testing.T) {
	h := &testHandler{statusCode: http.StatusBadRequest, responseBody: "CrawlerName already exists\n"}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.Create(context.Background(), "news", json.RawMessage(`{}`))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "CrawlerName already exists\n", entity.ResponseText(err))
}

func TestClient_RetrieveAndTest(t *testing.T) {
	h := &testHandler{responseBody: `{"items":[1,2]}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	doc, err := c.Retrieve(context.Background(), "news")
	require.NoError(t, err)
	require.Equal(t, "/api/crawler/retrieve/news", h.path)
	require.Equal(t, `{"items":[1,2]}`, string(doc))

	doc, err = c.Test(context.Background(), "news")
	require.NoError(t, err)
	require.Equal(t, "/api/test/news", h.path)
	require.Equal(t, `{"items":[1,2]}`, string(doc))

	h.responseBody = "not json"
	_, err = c.Test(context.Background(), "news")
	require.Error(t, err)
}

func TestClient_FetchDocument(t *testing.T) {
	h := &testHandler{responseBody: "line one\nline two"}
	c, srv := newTestClient(h)
	defer srv.Close()

	doc, err := c.FetchDocument(context.Background(), "/LICENSE")
	require.NoError(t, err)
	require.Equal(t, "/LICENSE", h.path)
	require.Equal(t, "line one\nline two", string(doc))
}
