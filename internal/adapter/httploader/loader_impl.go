// Package httploader loads script dependencies over plain HTTP and keeps their bodies,
// in request order, as a single bundle.
package httploader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

// Asset is one loaded script.
type Asset struct {
	URL  string
	Body []byte
}

// HTTPLoader fetches scripts into a bundle ordered by request, not by completion.
type HTTPLoader struct {
	base   *url.URL
	client *http.Client

	mu     sync.RWMutex
	bundle []slot
}

// slot is a bundle position reserved when a load is requested.
type slot struct {
	asset  Asset
	loaded bool
}

var _ repository.AssetLoader = (*HTTPLoader)(nil)

// NewHTTPLoader creates a loader resolving relative URLs against baseURL.
func NewHTTPLoader(baseURL string) (*HTTPLoader, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing asset base URL: %w", err)
	}
	return &HTTPLoader{base: base, client: &http.Client{}}, nil
}

// Load fetches rawURL. It reports the "loading" ready-state once response headers
// arrive and a load event once the body has been read and added to the bundle. The
// asset's bundle position is fixed by the order of Load calls, so a slow script still
// precedes the ones requested after it.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) <-chan entity.LoadSignal {
	l.mu.Lock()
	idx := len(l.bundle)
	l.bundle = append(l.bundle, slot{asset: Asset{URL: rawURL}})
	l.mu.Unlock()

	out := make(chan entity.LoadSignal, 2)
	go func() {
		defer close(out)
		body, err := l.fetch(ctx, rawURL, out)
		if err != nil {
			out <- entity.LoadSignal{Kind: entity.SignalError, Err: err}
			return
		}
		l.mu.Lock()
		l.bundle[idx].asset.Body = body
		l.bundle[idx].loaded = true
		l.mu.Unlock()
		out <- entity.LoadSignal{Kind: entity.SignalLoad}
	}()
	return out
}

func (l *HTTPLoader) fetch(ctx context.Context, rawURL string, out chan<- entity.LoadSignal) ([]byte, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing asset URL %q: %w", rawURL, err)
	}
	target := l.base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("loading %s: unexpected status %d", target, resp.StatusCode)
	}
	out <- entity.LoadSignal{Kind: entity.SignalReadyState, State: "loading"}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return body, nil
}

// Bundle returns the loaded assets in request order. Failed and unfinished loads are
// left out.
func (l *HTTPLoader) Bundle() []Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Asset, 0, len(l.bundle))
	for _, s := range l.bundle {
		if s.loaded {
			out = append(out, s.asset)
		}
	}
	return out
}

// WriteBundle writes every loaded script, in request order, as one script.
func (l *HTTPLoader) WriteBundle(w io.Writer) error {
	for _, a := range l.Bundle() {
		if _, err := fmt.Fprintf(w, "// %s\n%s\n;\n", a.URL, a.Body); err != nil {
			return err
		}
	}
	return nil
}
