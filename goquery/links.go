// Package goquery provides HTML link extraction using CSS selection.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webmap"
)

// Compile-time interface verification.
var _ webmap.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor scans documents for anchor targets. Parsing is
// lenient: malformed markup yields whatever anchors the parser can
// recover rather than an error.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks returns the href value of every <a> element in document
// order, exactly as written in the markup.
func (e *LinkExtractor) ExtractLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webmap.Errorf(webmap.EINVALID, "parse HTML: %v", err)
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs, nil
}
