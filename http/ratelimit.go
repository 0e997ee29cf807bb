package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Rate limit budgets applied by the API server.
var (
	// DefaultGlobalLimit applies to every rate-limited route.
	DefaultGlobalLimit = RateLimit{MaxRequests: 100, Window: 15 * time.Minute}

	// DefaultCrawlLimit additionally applies to the two sitemap
	// endpoints, which each trigger a full crawl.
	DefaultCrawlLimit = RateLimit{MaxRequests: 20, Window: 15 * time.Minute}
)

// RateLimit defines a fixed-window request budget.
type RateLimit struct {
	MaxRequests int
	Window      time.Duration
}

type rateBucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter enforces a fixed-window per-IP budget in memory. Windows
// are fixed, not sliding: the Nth+1 request inside a window is
// rejected, and the window resets as a whole.
type RateLimiter struct {
	limit RateLimit
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*rateBucket
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithClock overrides the limiter's clock. Used in tests.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// NewRateLimiter creates a RateLimiter enforcing limit.
func NewRateLimiter(limit RateLimit, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		now:     time.Now,
		buckets: make(map[string]*rateBucket),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// allow records a request from ip and reports whether it fits the
// current window. When it does not, retryAfter is the time until the
// window resets.
func (rl *RateLimiter) allow(ip string) (ok bool, retryAfter time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, found := rl.buckets[ip]
	if !found || now.After(b.resetAt) {
		rl.buckets[ip] = &rateBucket{count: 1, resetAt: now.Add(rl.limit.Window)}
		rl.pruneLocked(now)
		return true, 0
	}

	b.count++
	if b.count > rl.limit.MaxRequests {
		return false, b.resetAt.Sub(now)
	}
	return true, 0
}

// pruneLocked drops expired buckets once the table grows large.
// Callers hold rl.mu.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	if len(rl.buckets) < 10000 {
		return
	}
	for ip, b := range rl.buckets {
		if now.After(b.resetAt) {
			delete(rl.buckets, ip)
		}
	}
}

// Middleware rejects requests over budget with 429 and Retry-After
// guidance.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := rl.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded, retry later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the caller identity used for rate limiting: the
// first X-Forwarded-For hop when present, the connection address
// otherwise.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i >= 0 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
