package webmap

import (
	"context"
	"time"
)

// Crawl defaults. A zero-valued field in CrawlRequest falls back to
// the matching default.
const (
	DefaultMaxPages     = 50
	DefaultFetchTimeout = 5 * time.Second
)

// UserAgent is the full identification string sent with every fetch.
const UserAgent = "webmapbot/1.0 (+https://github.com/fwojciec/webmap)"

// UserAgentToken is the agent name matched against robots.txt
// User-agent lines.
const UserAgentToken = "webmapbot"

// CrawlRequest describes a single crawl invocation. It is immutable
// once the crawl starts.
type CrawlRequest struct {
	// SeedURL is the absolute URL the crawl starts from. The crawl is
	// restricted to this URL's host.
	SeedURL string

	// MaxPages caps the number of pages admitted to the sitemap.
	// Zero means DefaultMaxPages.
	MaxPages int

	// FetchTimeout bounds each individual page fetch.
	// Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration

	// IncludeTrace enables per-dequeue trace records in the result.
	IncludeTrace bool
}

// CrawlStats summarizes a completed crawl.
type CrawlStats struct {
	URLsDiscovered   int     `json:"urlsDiscovered"`
	URLsInSitemap    int     `json:"urlsInSitemap"`
	CrawlTimeSeconds float64 `json:"crawlTimeSeconds"`
}

// Trace actions. Each dequeued URL reaches exactly one of these
// terminal outcomes.
const (
	TraceVisited          = "visited"
	TraceSkippedResource  = "skipped-resource"
	TraceRobotsDisallowed = "robots-disallowed"
	TraceFetchError       = "fetch-error"
	TraceDuplicateContent = "duplicate-content"
	TraceNormalizeError   = "normalize-error"
)

// TraceEvent records the outcome of one frontier dequeue.
type TraceEvent struct {
	URL           string `json:"url"`
	NormalizedURL string `json:"normalizedURL,omitempty"`
	Action        string `json:"action"`
	Extra         string `json:"extra,omitempty"`
}

// CrawlResult holds the outcome of a crawl: the visited URLs in fetch
// order (these become the sitemap entries), statistics, and the
// optional trace. All state backing a result is scoped to one Crawl
// call; nothing survives across invocations.
type CrawlResult struct {
	URLs  []string     `json:"urls"`
	Stats CrawlStats   `json:"stats"`
	Trace []TraceEvent `json:"trace,omitempty"`
}

// Crawler drives a breadth-first crawl of a single site.
type Crawler interface {
	// Crawl runs to completion: until the frontier empties, the page
	// cap is reached, or ctx is done. Per-URL failures are recorded,
	// never returned; a non-nil error means the crawl could not run at
	// all (bad seed) or was cut short by ctx.
	Crawl(ctx context.Context, req CrawlRequest) (*CrawlResult, error)
}

// Fetcher retrieves page bodies.
type Fetcher interface {
	// Fetch returns the response body for url. Non-2xx responses are
	// errors. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (string, error)
}

// Normalizer canonicalizes URLs into dedup keys.
type Normalizer interface {
	// Normalize returns the canonical form of rawURL, or an EINVALID
	// error if it cannot be parsed as an absolute URL. It is pure and
	// idempotent: normalizing a normalized URL is the identity.
	Normalize(rawURL string) (string, error)
}

// LinkExtractor scans an HTML document for anchor targets.
type LinkExtractor interface {
	// ExtractLinks returns the href attribute of every anchor in
	// document order, exactly as written in the markup. Callers
	// resolve the values against the page URL. Malformed markup is
	// parsed best-effort, not rejected.
	ExtractLinks(html string) ([]string, error)
}

// PaceLimiter throttles successive fetches against a host.
type PaceLimiter interface {
	// Wait blocks until the next fetch to host is allowed. It returns
	// an error only if ctx is done first.
	Wait(ctx context.Context, host string) error
}
