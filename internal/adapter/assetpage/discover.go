// Package assetpage derives an asset descriptor from the script tags of an HTML page.
package assetpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/crawler-console/internal/entity"
)

// Discover fetches pageURL and returns its external scripts in document order.
func Discover(ctx context.Context, client *http.Client, pageURL string) (entity.AssetDescriptor, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}
	return FromHTML(resp.Body, base)
}

// FromHTML lists the src of every <script src> element, resolved against base.
// Duplicates are kept: a page that loads a script twice does so on purpose.
func FromHTML(r io.Reader, base *url.URL) (entity.AssetDescriptor, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var assets entity.AssetDescriptor
	var resolveErr error
	doc.Find("script[src]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return true
		}
		ref, err := url.Parse(src)
		if err != nil {
			resolveErr = fmt.Errorf("script %d: %w", i, err)
			return false
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		assets = append(assets, ref.String())
		return true
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return assets, nil
}
