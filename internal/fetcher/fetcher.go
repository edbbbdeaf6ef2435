package fetcher

import (
	"context"
)

// Page is the raw result of fetching a URL.
type Page struct {
	// URL is the final URL after any redirects.
	URL string

	// StatusCode is the HTTP status code (200 for rendered pages).
	StatusCode int

	// Body is the raw page content.
	Body []byte
}

// Fetcher retrieves the raw content at a URL over plain HTTP.
type Fetcher interface {
	// Fetch downloads the page at rawURL.
	Fetch(ctx context.Context, rawURL string) (*Page, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
