package mock

import "github.com/fwojciec/webmap"

var _ webmap.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of webmap.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string) ([]string, error) {
	return e.ExtractLinksFn(html)
}
