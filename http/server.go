package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webmap"
	"github.com/go-chi/chi/v5"
)

// DefaultCrawlDeadline bounds a whole crawl, as opposed to a single
// fetch. Exhausting it surfaces as 504.
const DefaultCrawlDeadline = 120 * time.Second

// maxSeedURLLength is the request payload limit for the url field.
const maxSeedURLLength = 2048

// Server serves the sitemap generation API. The crawl engine and the
// renderer are collaborators; everything else here is transport
// plumbing around them.
type Server struct {
	router chi.Router

	crawler  webmap.Crawler
	renderer webmap.SitemapRenderer
	logger   *slog.Logger

	maxPages       int
	crawlDeadline  time.Duration
	origins        []string
	previewPattern *regexp.Regexp
	globalLimit    RateLimit
	crawlLimit     RateLimit
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the request/error logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithMaxPages sets the page cap applied to API-triggered crawls.
func WithMaxPages(n int) ServerOption {
	return func(s *Server) { s.maxPages = n }
}

// WithCrawlDeadline bounds a whole API-triggered crawl.
func WithCrawlDeadline(d time.Duration) ServerOption {
	return func(s *Server) { s.crawlDeadline = d }
}

// WithAllowedOrigins sets the CORS origin allow-list.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(s *Server) { s.origins = origins }
}

// WithPreviewOriginPattern allows preview-deployment origins matching
// pattern in addition to the allow-list.
func WithPreviewOriginPattern(pattern *regexp.Regexp) ServerOption {
	return func(s *Server) { s.previewPattern = pattern }
}

// WithRateLimits overrides the global and per-crawl-endpoint budgets.
func WithRateLimits(global, crawl RateLimit) ServerOption {
	return func(s *Server) {
		s.globalLimit = global
		s.crawlLimit = crawl
	}
}

// NewServer wires routes and middleware onto a chi router.
func NewServer(crawler webmap.Crawler, renderer webmap.SitemapRenderer, opts ...ServerOption) *Server {
	s := &Server{
		crawler:       crawler,
		renderer:      renderer,
		logger:        slog.Default(),
		maxPages:      webmap.DefaultMaxPages,
		crawlDeadline: DefaultCrawlDeadline,
		globalLimit:   DefaultGlobalLimit,
		crawlLimit:    DefaultCrawlLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(SecurityHeaders(DefaultHeaders()))
	r.Use(CORS(s.origins, s.previewPattern))

	// Health bypasses rate limiting.
	r.Get("/", s.handleHealth)

	global := NewRateLimiter(s.globalLimit)
	perCrawl := NewRateLimiter(s.crawlLimit)
	r.Group(func(r chi.Router) {
		r.Use(global.Middleware)
		r.Group(func(r chi.Router) {
			r.Use(perCrawl.Middleware)
			r.Use(MaxBody(maxRequestBytes))
			r.Post("/api/generate-sitemap", s.handleGenerate)
			r.Post("/api/download-sitemap", s.handleDownload)
		})
	})

	s.router = r
	return s
}

// ServeHTTP satisfies the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "webmap",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// sitemapRequest is the payload of both sitemap endpoints. Pointer
// fields distinguish "absent" from zero values.
type sitemapRequest struct {
	URL            string   `json:"url"`
	ChangeFreq     *string  `json:"changeFreq"`
	Priority       *float64 `json:"priority"`
	IncludeLastMod *bool    `json:"includeLastMod"`
	IncludeDebug   *bool    `json:"includeDebug"`
}

type generateResponse struct {
	SitemapXML string              `json:"sitemapXML"`
	Stats      webmap.CrawlStats   `json:"stats"`
	Debug      []webmap.TraceEvent `json:"debug,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, opts, includeDebug, err := s.decodeRequest(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	result, xml, err := s.runCrawl(r.Context(), req, opts)
	if err != nil {
		s.error(w, r, err)
		return
	}

	resp := generateResponse{SitemapXML: xml, Stats: result.Stats}
	if includeDebug {
		resp.Debug = result.Trace
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	req, opts, _, err := s.decodeRequest(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	result, xml, err := s.runCrawl(r.Context(), req, opts)
	if err != nil {
		s.error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sitemap.xml"`)
	w.Header().Set("X-Urls-Discovered", strconv.Itoa(result.Stats.URLsDiscovered))
	w.Header().Set("X-Urls-In-Sitemap", strconv.Itoa(result.Stats.URLsInSitemap))
	w.Header().Set("X-Crawl-Time-Seconds", strconv.FormatFloat(result.Stats.CrawlTimeSeconds, 'f', 3, 64))
	w.Header().Set("ETag", fmt.Sprintf("%q", strconv.FormatUint(xxhash.Sum64String(xml), 16)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml))
}

// runCrawl executes the crawl under the server's operation deadline
// and renders the result.
func (s *Server) runCrawl(ctx context.Context, req webmap.CrawlRequest, opts webmap.RenderOptions) (*webmap.CrawlResult, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.crawlDeadline)
	defer cancel()

	result, err := s.crawler.Crawl(ctx, req)
	if err != nil {
		return nil, "", err
	}

	xml, err := s.renderer.Render(result.URLs, opts)
	if err != nil {
		return nil, "", err
	}
	return result, xml, nil
}

// decodeRequest validates the payload before the core is ever invoked.
// Validation failures name the offending field.
func (s *Server) decodeRequest(r *http.Request) (webmap.CrawlRequest, webmap.RenderOptions, bool, error) {
	var (
		req  webmap.CrawlRequest
		opts = webmap.NewRenderOptions()
	)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var payload sitemapRequest
	if err := dec.Decode(&payload); err != nil {
		return req, opts, false, webmap.Errorf(webmap.EINVALID, "request body: %v", err)
	}

	if err := validateSeedURL(payload.URL); err != nil {
		return req, opts, false, err
	}

	if payload.ChangeFreq != nil {
		freq := webmap.ChangeFreq(*payload.ChangeFreq)
		if !freq.Valid() {
			return req, opts, false, webmap.Errorf(webmap.EINVALID, "changeFreq: %q is not a valid change frequency", *payload.ChangeFreq)
		}
		opts.ChangeFreq = freq
	}
	if payload.Priority != nil {
		if *payload.Priority < 0 || *payload.Priority > 1 {
			return req, opts, false, webmap.Errorf(webmap.EINVALID, "priority: %v must be between 0.0 and 1.0", *payload.Priority)
		}
		opts.Priority = *payload.Priority
	}
	if payload.IncludeLastMod != nil {
		opts.IncludeLastMod = *payload.IncludeLastMod
	}

	includeDebug := payload.IncludeDebug != nil && *payload.IncludeDebug

	req = webmap.CrawlRequest{
		SeedURL:      payload.URL,
		MaxPages:     s.maxPages,
		IncludeTrace: includeDebug,
	}
	return req, opts, includeDebug, nil
}

// validateSeedURL enforces the url field contract: present, bounded,
// absolute, http(s), and pointing at a public host (SSRF guard).
func validateSeedURL(raw string) error {
	if raw == "" {
		return webmap.Errorf(webmap.EINVALID, "url: field is required")
	}
	if len(raw) > maxSeedURLLength {
		return webmap.Errorf(webmap.EINVALID, "url: must be at most %d characters", maxSeedURLLength)
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return webmap.Errorf(webmap.EINVALID, "url: must be an absolute URL")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return webmap.Errorf(webmap.EINVALID, "url: scheme must be http or https")
	}

	if isPrivateHost(u.Hostname()) {
		return webmap.Errorf(webmap.EINVALID, "url: host must not be private or loopback")
	}
	return nil
}

// isPrivateHost reports whether host is a loopback/private/link-local
// literal or a well-known local name. Classification is syntactic;
// DNS resolution is out of scope.
func isPrivateHost(host string) bool {
	host = strings.ToLower(host)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// error logs full detail server-side and writes the generic
// {error, statusCode} surface to the caller.
func (s *Server) error(w http.ResponseWriter, r *http.Request, err error) {
	code := webmap.ErrorCode(err)
	status := statusFromCode(code)

	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
		"request_id", RequestIDFromContext(r.Context()),
	)

	message := webmap.ErrorMessage(err)
	if code == webmap.EINTERNAL {
		message = "Internal error."
	}
	writeError(w, status, message)
}

// statusFromCode maps application error codes to HTTP statuses.
func statusFromCode(code string) int {
	switch code {
	case webmap.EINVALID:
		return http.StatusBadRequest
	case webmap.ENOTFOUND:
		return http.StatusNotFound
	case webmap.ETIMEOUT:
		return http.StatusGatewayTimeout
	case webmap.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, StatusCode: status})
}
