package mock

import (
	"context"

	"github.com/fwojciec/webmap"
)

var _ webmap.PaceLimiter = (*PaceLimiter)(nil)

// PaceLimiter is a mock implementation of webmap.PaceLimiter.
type PaceLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *PaceLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}
