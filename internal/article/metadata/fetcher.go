// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

// Package metadata scrapes page metadata for clipped articles. It reads the
// Open Graph tags (og:title, og:description, og:image) and falls back to the
// document title.
package metadata

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
	"golang.org/x/net/html"

	"github.com/clipmark/clipmark/internal/article"
)

// maxBodySize caps how much of a page gets read; metadata lives in <head>.
const maxBodySize = 1 << 20

// defaultTimeout bounds a single fetch when the caller's context has no
// earlier deadline.
const defaultTimeout = 10 * time.Second

// Fetcher implements article.MetadataFetcher over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client falls back to a client with a
// sane timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{client: client}
}

// Fetch downloads the page and extracts its metadata. Missing tags yield
// zero values rather than errors; the caller decides what a missing title
// means.
func (f *Fetcher) Fetch(ctx context.Context, url article.URL) (*article.Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, oops.Code("METADATA_REQUEST_FAILED").
			With("url", url.String()).
			Wrap(err)
	}
	req.Header.Set("User-Agent", "clipmark/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, oops.Code("METADATA_REQUEST_FAILED").
			With("url", url.String()).
			Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, oops.Code("METADATA_BAD_STATUS").
			With("url", url.String()).
			With("status", resp.StatusCode).
			Errorf("page returned status %d", resp.StatusCode)
	}

	meta, err := parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, oops.Code("METADATA_PARSE_FAILED").
			With("url", url.String()).
			Wrap(err)
	}
	return meta, nil
}

// parse walks the HTML tree collecting og: meta tags and the title element.
func parse(r io.Reader) (*article.Metadata, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err //nolint:wrapcheck // Caller wraps with the URL
	}

	var (
		meta     article.Metadata
		docTitle string
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				property, content := attr(n, "property"), attr(n, "content")
				switch property {
				case "og:title":
					if meta.Title == "" {
						meta.Title = strings.TrimSpace(content)
					}
				case "og:description":
					if meta.Description == nil && content != "" {
						desc := strings.TrimSpace(content)
						meta.Description = &desc
					}
				case "og:image":
					if meta.OGImageURL == nil && content != "" {
						img := strings.TrimSpace(content)
						meta.OGImageURL = &img
					}
				}
			case "title":
				if docTitle == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if meta.Title == "" {
		meta.Title = docTitle
	}
	return &meta, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Compile-time interface check.
var _ article.MetadataFetcher = (*Fetcher)(nil)
