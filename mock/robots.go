package mock

import (
	"context"

	"github.com/fwojciec/webmap"
)

var _ webmap.RobotsService = (*RobotsService)(nil)

// RobotsService is a mock implementation of webmap.RobotsService.
type RobotsService struct {
	FetchFn func(ctx context.Context, seedURL string) (*webmap.RobotsPolicy, error)
}

func (s *RobotsService) Fetch(ctx context.Context, seedURL string) (*webmap.RobotsPolicy, error) {
	return s.FetchFn(ctx, seedURL)
}
