package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webmap"
)

// Ensure LoggingFetcher implements webmap.Fetcher.
var _ webmap.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-page debug logging.
type LoggingFetcher struct {
	next   webmap.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next webmap.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (body string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(body),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
