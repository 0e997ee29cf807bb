// Package crawl implements the breadth-first site crawl behind sitemap
// generation: frontier management, robots.txt enforcement,
// duplicate-content suppression, and the page budget.
package crawl

import (
	"context"
	"net/url"
	"time"

	"github.com/fwojciec/webmap"
)

// frontierExpectedURLs sizes the discovered-set Bloom filter. Crawls
// discover far more URLs than they visit, so this is decoupled from
// the page cap.
const frontierExpectedURLs = 10000

// Compile-time interface verification.
var _ webmap.Crawler = (*Engine)(nil)

// Engine drives breadth-first crawls. It holds only collaborators; the
// frontier, discovered set, and fingerprint table are owned by a
// single Crawl call, so concurrent crawls are independent and need no
// locking between them.
type Engine struct {
	Fetcher    webmap.Fetcher
	Robots     webmap.RobotsService
	Normalizer webmap.Normalizer
	Links      webmap.LinkExtractor

	// Pacer, if set, throttles successive fetches per host.
	Pacer webmap.PaceLimiter
}

// Crawl runs a breadth-first crawl from req.SeedURL until the frontier
// empties, the page cap is reached, or ctx is done. One URL is fetched
// at a time; dequeue order equals fetch-completion order, and the
// returned URL list preserves it.
//
// Per-URL failures (resource skips, robots denials, fetch errors,
// duplicate content) are recorded and never abort the crawl. The only
// returned errors are an EINVALID seed and an ETIMEOUT cancellation.
func (e *Engine) Crawl(ctx context.Context, req webmap.CrawlRequest) (*webmap.CrawlResult, error) {
	begin := time.Now()

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = webmap.DefaultMaxPages
	}
	fetchTimeout := req.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = webmap.DefaultFetchTimeout
	}

	// The seed is validated upstream; a seed that does not normalize
	// here is an invariant violation, reported as a request error.
	seedKey, err := e.Normalizer.Normalize(req.SeedURL)
	if err != nil {
		return nil, webmap.Errorf(webmap.EINVALID, "seed URL %q: %s", req.SeedURL, webmap.ErrorMessage(err))
	}
	seed, err := url.Parse(seedKey)
	if err != nil {
		return nil, webmap.Errorf(webmap.EINVALID, "seed URL %q does not parse after normalization", req.SeedURL)
	}
	seedHost := seed.Host

	// Robots is fetched once, before the loop, and fails open: an
	// unreachable or malformed robots.txt means an empty policy.
	policy, err := e.Robots.Fetch(ctx, req.SeedURL)
	if err != nil {
		policy = &webmap.RobotsPolicy{}
	}

	frontier := NewFrontier(frontierExpectedURLs)
	frontier.Observe(seedKey)
	frontier.Push(req.SeedURL)

	var (
		visited      []string
		fingerprints = make(map[string]string) // body hash -> first normalized URL
		trace        []webmap.TraceEvent
	)

	record := func(ev webmap.TraceEvent) {
		if req.IncludeTrace {
			trace = append(trace, ev)
		}
	}

	for len(visited) < maxPages {
		if ctx.Err() != nil {
			return nil, webmap.Errorf(webmap.ETIMEOUT, "crawl of %s aborted after %d pages: %v", req.SeedURL, len(visited), ctx.Err())
		}

		original, ok := frontier.Pop()
		if !ok {
			break
		}

		key, err := e.Normalizer.Normalize(original)
		if err != nil {
			record(webmap.TraceEvent{URL: original, Action: webmap.TraceNormalizeError, Extra: webmap.ErrorMessage(err)})
			continue
		}
		parsed, err := url.Parse(key)
		if err != nil {
			record(webmap.TraceEvent{URL: original, Action: webmap.TraceNormalizeError, Extra: err.Error()})
			continue
		}

		if IsSkippableResource(key) {
			record(webmap.TraceEvent{URL: original, NormalizedURL: key, Action: webmap.TraceSkippedResource})
			continue
		}

		if !policy.Allowed(parsed.Path) {
			record(webmap.TraceEvent{URL: original, NormalizedURL: key, Action: webmap.TraceRobotsDisallowed})
			continue
		}

		if e.Pacer != nil {
			if err := e.Pacer.Wait(ctx, parsed.Host); err != nil {
				return nil, webmap.Errorf(webmap.ETIMEOUT, "crawl of %s aborted after %d pages: %v", req.SeedURL, len(visited), err)
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		body, err := e.Fetcher.Fetch(fetchCtx, original)
		cancel()
		if err != nil {
			record(webmap.TraceEvent{URL: original, NormalizedURL: key, Action: webmap.TraceFetchError, Extra: webmap.ErrorMessage(err)})
			continue
		}

		hash := Fingerprint(body)
		if first, ok := fingerprints[hash]; ok {
			record(webmap.TraceEvent{URL: original, NormalizedURL: key, Action: webmap.TraceDuplicateContent, Extra: "duplicate of " + first})
			continue
		}
		fingerprints[hash] = key

		visited = append(visited, key)
		record(webmap.TraceEvent{URL: original, NormalizedURL: key, Action: webmap.TraceVisited})

		hrefs, err := e.Links.ExtractLinks(body)
		if err != nil {
			// Extraction failure is not crawl-fatal; the page still
			// counts as visited, it just contributes no links.
			continue
		}
		for _, href := range hrefs {
			abs, ok := Resolve(href, original)
			if !ok {
				continue
			}
			linkKey, err := e.Normalizer.Normalize(abs)
			if err != nil {
				continue
			}
			// Every resolvable link counts as discovered, external
			// ones included; only internal links join the frontier.
			if !frontier.Observe(linkKey) {
				continue
			}
			if !IsInternal(linkKey, seedHost) {
				continue
			}
			frontier.Push(abs)
		}
	}

	return &webmap.CrawlResult{
		URLs: visited,
		Stats: webmap.CrawlStats{
			URLsDiscovered:   frontier.DiscoveredCount(),
			URLsInSitemap:    len(visited),
			CrawlTimeSeconds: time.Since(begin).Seconds(),
		},
		Trace: trace,
	}, nil
}
