// Package http provides the HTTP collaborators around the crawl
// engine: the page fetcher, the robots.txt fetcher, and the API server
// with its middleware stack.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/webmap"
)

// DefaultFetchTimeout is the default timeout for page fetches.
const DefaultFetchTimeout = webmap.DefaultFetchTimeout

// maxBodyBytes caps fetched page bodies. Pages past the cap are
// fingerprinted and scanned on the truncated prefix.
const maxBodyBytes = 10 << 20

// Compile-time interface verification.
var _ webmap.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page bodies over HTTP. It identifies itself with
// the webmap user agent and treats any non-2xx status as a failed
// fetch.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the client-level timeout for fetches. Defaults to
// DefaultFetchTimeout. Callers may impose shorter per-request
// deadlines through the context.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header sent with fetches.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: webmap.UserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch retrieves the body at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", webmap.Errorf(webmap.EINVALID, "build request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", webmap.Errorf(webmap.ETIMEOUT, "fetch %s: timed out", url)
		}
		return "", webmap.Errorf(webmap.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", webmap.Errorf(webmap.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", webmap.Errorf(webmap.EUNAVAILABLE, "read body of %s: %v", url, err)
	}
	return string(body), nil
}
