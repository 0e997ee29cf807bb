package mock

import (
	"context"

	"github.com/fwojciec/webmap"
)

var _ webmap.Crawler = (*Crawler)(nil)

// Crawler is a mock implementation of webmap.Crawler.
type Crawler struct {
	CrawlFn func(ctx context.Context, req webmap.CrawlRequest) (*webmap.CrawlResult, error)
}

func (c *Crawler) Crawl(ctx context.Context, req webmap.CrawlRequest) (*webmap.CrawlResult, error) {
	return c.CrawlFn(ctx, req)
}
