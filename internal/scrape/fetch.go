// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/abstract-scraper/pkg/types"
)

// Response is the status and body of one page fetch.
type Response struct {
	StatusCode int
	Body       string
}

// Fetcher retrieves a page. Non-200 statuses are not errors; err is
// reserved for transport failures.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher fetches pages over HTTP with a single attempt per call.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher returns an HTTPFetcher using cfg's timeout, user agent,
// and extra headers.
func NewHTTPFetcher(cfg types.HTTPConfig) *HTTPFetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "text/html")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if len(cfg.Headers) > 0 {
		client.SetHeaders(cfg.Headers)
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request %s: %w", url, err)
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.String()}, nil
}
