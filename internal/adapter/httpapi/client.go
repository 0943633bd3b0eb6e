// Package httpapi implements the crawler API and static document contracts over the
// remote service's HTTP/JSON routes.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
	"github.com/user/crawler-console/pkg/metrics"
	"github.com/user/crawler-console/pkg/utils"
)

// Client talks to the crawler configuration service.
type Client struct {
	baseURL    string
	listPath   string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewClient creates a client for the service at baseURL. listPath is the collection
// endpoint, e.g. "/api/list/crawler".
func NewClient(baseURL, listPath string, m *metrics.Metrics) *Client {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		listPath:   listPath,
		httpClient: &http.Client{},
		metrics:    m,
	}
}

var (
	_ repository.CrawlerAPI     = (*Client)(nil)
	_ repository.DocumentSource = (*Client)(nil)
)

func (c *Client) List(ctx context.Context, opts repository.ListOptions) (*entity.CrawlerList, error) {
	q := url.Values{}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	path := c.listPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list *entity.CrawlerList
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err == nil {
		list, err = entity.DecodeCrawlerList(body)
	}
	c.metrics.IncAPICall("list", err)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Create(ctx context.Context, name string, record json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "create", name, record)
}

func (c *Client) Update(ctx context.Context, name string, record json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "update", name, record)
}

// Delete issues the delete route. The service exposes it as a GET.
func (c *Client) Delete(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodGet, "/api/crawler/delete/"+url.PathEscape(name), nil)
	c.metrics.IncAPICall("delete", err)
	return err
}

func (c *Client) Retrieve(ctx context.Context, name string) (json.RawMessage, error) {
	return c.getJSON(ctx, "retrieve", "/api/crawler/retrieve/"+url.PathEscape(name))
}

func (c *Client) Test(ctx context.Context, name string) (json.RawMessage, error) {
	return c.getJSON(ctx, "test", "/api/test/"+url.PathEscape(name))
}

// FetchDocument fetches a static document relative to the base URL, or an absolute URL.
func (c *Client) FetchDocument(ctx context.Context, path string) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	c.metrics.IncAPICall("document", err)
	return body, err
}

func (c *Client) post(ctx context.Context, action, name string, record json.RawMessage) (json.RawMessage, error) {
	path := "/api/crawler/" + action + "/" + url.PathEscape(name)
	body, err := c.do(ctx, http.MethodPost, path, record)
	c.metrics.IncAPICall(action, err)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) getJSON(ctx context.Context, op, path string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err == nil && !json.Valid(body) {
		err = fmt.Errorf("%s %s: response is not valid JSON", op, path)
	}
	c.metrics.IncAPICall(op, err)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// APIError is a non-2xx response. Body is the raw response text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// RawBody returns the response body verbatim.
func (e *APIError) RawBody() string { return e.Body }

// do performs a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, utils.JoinURL(c.baseURL, path), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
