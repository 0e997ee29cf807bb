package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/webmap"
)

// DefaultRobotsTimeout bounds the single robots.txt fetch made before
// a crawl's main loop starts.
const DefaultRobotsTimeout = 3 * time.Second

// maxRobotsBytes caps robots.txt bodies.
const maxRobotsBytes = 1 << 20

// Compile-time interface verification.
var _ webmap.RobotsService = (*RobotsService)(nil)

// RobotsService fetches and parses robots.txt for a crawl's seed host.
// Every failure is reported as an error; the crawl engine treats any
// error as "no policy" and proceeds, so this service stays honest
// about what actually happened.
type RobotsService struct {
	client  *http.Client
	timeout time.Duration
	agent   string
}

// RobotsOption configures a RobotsService.
type RobotsOption func(*RobotsService)

// WithRobotsTimeout sets the robots.txt fetch timeout.
func WithRobotsTimeout(d time.Duration) RobotsOption {
	return func(s *RobotsService) {
		s.timeout = d
	}
}

// NewRobotsService creates a new RobotsService.
func NewRobotsService(opts ...RobotsOption) *RobotsService {
	s := &RobotsService{
		timeout: DefaultRobotsTimeout,
		agent:   webmap.UserAgentToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.client = &http.Client{Timeout: s.timeout}
	return s
}

// Fetch retrieves /robots.txt from the host of seedURL and parses it
// into the policy for the webmap agent.
func (s *RobotsService) Fetch(ctx context.Context, seedURL string) (*webmap.RobotsPolicy, error) {
	seed, err := url.Parse(seedURL)
	if err != nil || seed.Host == "" {
		return nil, webmap.Errorf(webmap.EINVALID, "robots: seed URL %q has no host", seedURL)
	}
	robotsURL := seed.Scheme + "://" + seed.Host + "/robots.txt"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, webmap.Errorf(webmap.EINVALID, "robots: build request for %s: %v", robotsURL, err)
	}
	req.Header.Set("User-Agent", webmap.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, webmap.Errorf(webmap.EUNAVAILABLE, "robots: fetch %s: %v", robotsURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, webmap.Errorf(webmap.ENOTFOUND, "robots: HTTP %d for %s", resp.StatusCode, robotsURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, webmap.Errorf(webmap.EUNAVAILABLE, "robots: read %s: %v", robotsURL, err)
	}

	return webmap.ParseRobots(string(body), s.agent), nil
}
