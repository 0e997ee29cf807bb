package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/webmap"
	"golang.org/x/time/rate"
)

var _ webmap.PaceLimiter = (*HostLimiter)(nil)

// HostLimiter paces fetches per host using token buckets with a burst
// of one. A single limiter is shared by every crawl in the process, so
// concurrent crawls of the same site stay within the combined budget.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter creates a HostLimiter allowing rps requests per
// second per host. A non-positive rps disables pacing.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the next fetch to host is allowed. It returns an
// error only if ctx is done before a token is available.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l.rps <= 0 {
		return nil
	}

	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
