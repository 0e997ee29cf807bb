// Package slog provides logging decorators for webmap services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webmap"
)

// Ensure LoggingCrawler implements webmap.Crawler.
var _ webmap.Crawler = (*LoggingCrawler)(nil)

// LoggingCrawler wraps a Crawler with per-crawl logging.
type LoggingCrawler struct {
	next   webmap.Crawler
	logger *slog.Logger
}

// NewLoggingCrawler creates a new LoggingCrawler.
func NewLoggingCrawler(next webmap.Crawler, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

// Crawl delegates to the wrapped crawler and logs the outcome.
func (c *LoggingCrawler) Crawl(ctx context.Context, req webmap.CrawlRequest) (result *webmap.CrawlResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"seed", req.SeedURL,
			"duration", time.Since(begin),
			"err", err,
		}
		if result != nil {
			attrs = append(attrs,
				"discovered", result.Stats.URLsDiscovered,
				"visited", result.Stats.URLsInSitemap,
			)
		}
		c.logger.Info("crawl", attrs...)
	}(time.Now())
	return c.next.Crawl(ctx, req)
}
