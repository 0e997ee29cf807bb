// Package etree renders sitemaps.org XML documents.
package etree

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/webmap"
)

// xmlns is the sitemaps.org protocol namespace.
const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Compile-time interface verification.
var _ webmap.SitemapRenderer = (*Renderer)(nil)

// Renderer produces sitemaps.org urlset documents.
type Renderer struct {
	now func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the clock used for lastmod fields.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates a new Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders urls as a urlset document in input order. Entry text
// is XML-escaped by the document writer. When opts.IncludeLastMod is
// set, every entry carries the same current UTC date.
func (r *Renderer) Render(urls []string, opts webmap.RenderOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if len(urls) > webmap.MaxSitemapURLs {
		return "", webmap.Errorf(webmap.EINVALID, "sitemap cannot hold %d URLs (protocol limit is %d)", len(urls), webmap.MaxSitemapURLs)
	}

	freq := opts.ChangeFreq
	if freq == "" {
		freq = webmap.ChangeFreqWeekly
	}
	priority := fmt.Sprintf("%.1f", opts.Priority)
	lastmod := r.now().UTC().Format("2006-01-02")

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", xmlns)

	for _, loc := range urls {
		entry := urlset.CreateElement("url")
		entry.CreateElement("loc").SetText(loc)
		if opts.IncludeLastMod {
			entry.CreateElement("lastmod").SetText(lastmod)
		}
		entry.CreateElement("changefreq").SetText(string(freq))
		entry.CreateElement("priority").SetText(priority)
	}

	doc.Indent(2)
	return doc.WriteToString()
}
