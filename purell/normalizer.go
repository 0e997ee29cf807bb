// Package purell provides URL normalization for crawl deduplication.
// Normalized forms are the sole dedup keys of a crawl: two URLs are
// the same page exactly when they normalize to the same string.
package purell

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
	"github.com/fwojciec/webmap"
)

// Compile-time interface verification.
var _ webmap.Normalizer = (*Normalizer)(nil)

// trackingParams are query parameters that never change page identity
// and are stripped during normalization.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid",
}

// normalizeFlags cover the canonicalization steps purell implements:
// lowercase scheme and host, drop default ports, strip fragments, sort
// query parameters, collapse duplicate path slashes. Tracking-param
// removal and trailing-slash handling are done locally.
const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagSortQuery |
	purell.FlagRemoveDuplicateSlashes

// Normalizer canonicalizes URLs into stable dedup keys.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns the canonical form of rawURL. It is deterministic,
// side-effect-free, and idempotent. URLs that do not parse as absolute
// URLs yield an EINVALID error.
func (n *Normalizer) Normalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", webmap.Errorf(webmap.EINVALID, "unparseable URL %q", rawURL)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", webmap.Errorf(webmap.EINVALID, "not an absolute URL: %q", rawURL)
	}

	if u.RawQuery != "" {
		q := u.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		// Encode serializes keys in sorted order.
		u.RawQuery = q.Encode()
	}

	// purell normalizes u in place.
	purell.NormalizeURL(u, normalizeFlags)

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}

	return u.String(), nil
}
