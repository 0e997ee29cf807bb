package mock

import "github.com/fwojciec/webmap"

var _ webmap.SitemapRenderer = (*SitemapRenderer)(nil)

// SitemapRenderer is a mock implementation of webmap.SitemapRenderer.
type SitemapRenderer struct {
	RenderFn func(urls []string, opts webmap.RenderOptions) (string, error)
}

func (r *SitemapRenderer) Render(urls []string, opts webmap.RenderOptions) (string, error) {
	return r.RenderFn(urls, opts)
}
