package crawl_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fwojciec/webmap"
	"github.com/fwojciec/webmap/crawl"
	"github.com/fwojciec/webmap/goquery"
	"github.com/fwojciec/webmap/mock"
	"github.com/fwojciec/webmap/purell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageFetcher serves canned bodies keyed by URL. Unknown URLs fail
// like a 404 would.
func pageFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			body, ok := pages[url]
			if !ok {
				return "", webmap.Errorf(webmap.EUNAVAILABLE, "HTTP 404 for %s", url)
			}
			return body, nil
		},
	}
}

func allowAllRobots() *mock.RobotsService {
	return &mock.RobotsService{
		FetchFn: func(context.Context, string) (*webmap.RobotsPolicy, error) {
			return &webmap.RobotsPolicy{}, nil
		},
	}
}

func newEngine(fetcher webmap.Fetcher, robots webmap.RobotsService) *crawl.Engine {
	return &crawl.Engine{
		Fetcher:    fetcher,
		Robots:     robots,
		Normalizer: purell.NewNormalizer(),
		Links:      goquery.NewLinkExtractor(),
	}
}

func TestEngine_Crawl_DiscoversAndVisitsPerLinkClass(t *testing.T) {
	t.Parallel()

	// The seed links a unique page twice (once with a fragment), an
	// external page, and an internal image.
	pages := map[string]string{
		"https://example.com": `<html><body>
			<a href="https://example.com/a">a</a>
			<a href="https://example.com/a#section">a again</a>
			<a href="http://other.com/b">external</a>
			<a href="https://example.com/logo.png">logo</a>
		</body></html>`,
		"https://example.com/a": `<html><body><p>leaf page</p></body></html>`,
	}

	e := newEngine(pageFetcher(pages), allowAllRobots())

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com", "https://example.com/a"}, result.URLs)
	assert.Equal(t, 4, result.Stats.URLsDiscovered, "seed, /a, external, and image are all discoveries")
	assert.Equal(t, 2, result.Stats.URLsInSitemap)
}

func TestEngine_Crawl_IdenticalContentSiteVisitsOnePage(t *testing.T) {
	t.Parallel()

	// Every page serves the same bytes regardless of URL.
	body := `<html><body>
		<a href="/p1">1</a><a href="/p2">2</a><a href="/p3">3</a>
	</body></html>`
	fetcher := &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) { return body, nil },
	}

	e := newEngine(fetcher, allowAllRobots())

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, result.URLs, "duplicate bodies never enter the sitemap")
	assert.Equal(t, 4, result.Stats.URLsDiscovered)
}

func TestEngine_Crawl_MaxPagesStopsAtSeed(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://example.com":   `<a href="/a">a</a><a href="/b">b</a>`,
		"https://example.com/a": `page a`,
		"https://example.com/b": `page b`,
	}

	e := newEngine(pageFetcher(pages), allowAllRobots())

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{
		SeedURL:  "https://example.com",
		MaxPages: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, result.URLs)
}

func TestEngine_Crawl_VisitOrderIsBreadthFirst(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://example.com":   `<a href="/a">a</a><a href="/b">b</a>`,
		"https://example.com/a": `page a <a href="/c">c</a>`,
		"https://example.com/b": `page b`,
		"https://example.com/c": `page c`,
	}

	e := newEngine(pageFetcher(pages), allowAllRobots())

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com",
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}, result.URLs, "siblings come before children")
}

func TestEngine_Crawl_FetchErrorsAreNotFatal(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://example.com":    `<a href="/broken">x</a><a href="/ok">y</a>`,
		"https://example.com/ok": `fine`,
	}

	e := newEngine(pageFetcher(pages), allowAllRobots())

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{
		SeedURL:      "https://example.com",
		IncludeTrace: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com", "https://example.com/ok"}, result.URLs)

	var actions []string
	for _, ev := range result.Trace {
		actions = append(actions, ev.Action)
	}
	assert.Contains(t, actions, webmap.TraceFetchError)
}

func TestEngine_Crawl_RobotsDisallowedPagesAreSkipped(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://example.com":     `<a href="/private/x">p</a><a href="/pub">q</a>`,
		"https://example.com/pub": `public`,
	}
	robots := &mock.RobotsService{
		FetchFn: func(context.Context, string) (*webmap.RobotsPolicy, error) {
			return &webmap.RobotsPolicy{Disallow: []string{"/private"}}, nil
		},
	}

	e := newEngine(pageFetcher(pages), robots)

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{
		SeedURL:      "https://example.com",
		IncludeTrace: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com", "https://example.com/pub"}, result.URLs)
	assert.Equal(t, 3, result.Stats.URLsDiscovered, "disallowed pages still count as discovered")

	var disallowed []string
	for _, ev := range result.Trace {
		if ev.Action == webmap.TraceRobotsDisallowed {
			disallowed = append(disallowed, ev.NormalizedURL)
		}
	}
	assert.Equal(t, []string{"https://example.com/private/x"}, disallowed)
}

func TestEngine_Crawl_RobotsFetchFailureFailsOpen(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://example.com": `no links here`,
	}
	robots := &mock.RobotsService{
		FetchFn: func(context.Context, string) (*webmap.RobotsPolicy, error) {
			return nil, webmap.Errorf(webmap.EUNAVAILABLE, "robots.txt unreachable")
		},
	}

	e := newEngine(pageFetcher(pages), robots)

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, result.URLs)
}

func TestEngine_Crawl_InvalidSeedIsRequestError(t *testing.T) {
	t.Parallel()

	e := newEngine(pageFetcher(nil), allowAllRobots())

	_, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "not a url"})

	assert.Equal(t, webmap.EINVALID, webmap.ErrorCode(err))
}

func TestEngine_Crawl_CanceledContextReportsTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(pageFetcher(nil), allowAllRobots())

	_, err := e.Crawl(ctx, webmap.CrawlRequest{SeedURL: "https://example.com"})

	assert.Equal(t, webmap.ETIMEOUT, webmap.ErrorCode(err))
}

func TestEngine_Crawl_TraceIsOffByDefault(t *testing.T) {
	t.Parallel()

	pages := map[string]string{"https://example.com": `hello`}

	e := newEngine(pageFetcher(pages), allowAllRobots())

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "https://example.com"})

	require.NoError(t, err)
	assert.Nil(t, result.Trace)
}

func TestEngine_Crawl_TraceRecordsOneEventPerDequeue(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://example.com":   `<a href="/a">a</a><a href="/pic.png">p</a>`,
		"https://example.com/a": `page a`,
	}

	e := newEngine(pageFetcher(pages), allowAllRobots())

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{
		SeedURL:      "https://example.com",
		IncludeTrace: true,
	})

	require.NoError(t, err)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, webmap.TraceVisited, result.Trace[0].Action)
	assert.Equal(t, webmap.TraceVisited, result.Trace[1].Action)
	assert.Equal(t, webmap.TraceSkippedResource, result.Trace[2].Action)
}

func TestEngine_Crawl_PacerSeesEveryFetchHost(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://example.com":   `<a href="/a">a</a>`,
		"https://example.com/a": `page a`,
	}

	var hosts []string
	e := newEngine(pageFetcher(pages), allowAllRobots())
	e.Pacer = &mock.PaceLimiter{
		WaitFn: func(_ context.Context, host string) error {
			hosts = append(hosts, host)
			return nil
		},
	}

	_, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "example.com"}, hosts)
}

func TestEngine_Crawl_ManyPagesRespectsDefaultCap(t *testing.T) {
	t.Parallel()

	// A hub page linking to 60 children, each unique; the default cap
	// admits 50 pages total.
	hub := ""
	pages := map[string]string{}
	for i := 0; i < 60; i++ {
		url := fmt.Sprintf("https://example.com/p%02d", i)
		hub += fmt.Sprintf(`<a href="%s">p</a>`, url)
		pages[url] = fmt.Sprintf("unique page %d", i)
	}
	pages["https://example.com"] = hub

	e := newEngine(pageFetcher(pages), allowAllRobots())

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "https://example.com"})

	require.NoError(t, err)
	assert.Len(t, result.URLs, webmap.DefaultMaxPages)
	assert.Equal(t, 61, result.Stats.URLsDiscovered)
}

func TestEngine_Crawl_ExtractFailureStillVisitsThePage(t *testing.T) {
	t.Parallel()

	e := newEngine(pageFetcher(map[string]string{
		"https://example.com": "page body",
	}), allowAllRobots())
	e.Links = &mock.LinkExtractor{
		ExtractLinksFn: func(html string) ([]string, error) {
			return nil, webmap.Errorf(webmap.EINTERNAL, "parser blew up")
		},
	}

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{SeedURL: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, result.URLs)
	assert.Equal(t, 1, result.Stats.URLsDiscovered)
}

func TestEngine_Crawl_NormalizeFailureAtDequeueIsTraced(t *testing.T) {
	t.Parallel()

	// The link normalizes when discovered but not when dequeued, so
	// the failure surfaces as a trace record instead of a crawl error.
	calls := map[string]int{}
	real := purell.NewNormalizer()
	e := newEngine(pageFetcher(map[string]string{
		"https://example.com": `<a href="https://example.com/flaky">f</a>`,
	}), allowAllRobots())
	e.Normalizer = &mock.Normalizer{
		NormalizeFn: func(rawURL string) (string, error) {
			calls[rawURL]++
			if rawURL == "https://example.com/flaky" && calls[rawURL] > 1 {
				return "", webmap.Errorf(webmap.EINVALID, "unparseable URL")
			}
			return real.Normalize(rawURL)
		},
	}

	result, err := e.Crawl(context.Background(), webmap.CrawlRequest{
		SeedURL:      "https://example.com",
		IncludeTrace: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, result.URLs)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, webmap.TraceVisited, result.Trace[0].Action)
	assert.Equal(t, webmap.TraceNormalizeError, result.Trace[1].Action)
	assert.Equal(t, "https://example.com/flaky", result.Trace[1].URL)
}
