// Package mock provides function-field mock implementations of the
// webmap service interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/webmap"
)

var _ webmap.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of webmap.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}
