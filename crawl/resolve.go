package crawl

import (
	"net/url"
	"path"
	"strings"
)

// skipSchemes are href schemes that never yield crawlable pages.
var skipSchemes = []string{"javascript:", "mailto:", "tel:"}

// resourceExts are path extensions of non-HTML resources: images,
// archives, documents, audio/video, fonts, icons. URLs ending in one
// of these are discovered but never fetched.
var resourceExts = map[string]struct{}{
	// images
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {},
	".webp": {}, ".bmp": {}, ".tiff": {}, ".avif": {}, ".ico": {},
	// archives
	".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".rar": {}, ".7z": {}, ".bz2": {},
	// documents
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {}, ".csv": {}, ".rtf": {},
	// audio and video
	".mp3": {}, ".wav": {}, ".ogg": {}, ".m4a": {}, ".flac": {},
	".mp4": {}, ".m4v": {}, ".avi": {}, ".mov": {}, ".wmv": {},
	".webm": {}, ".mkv": {}, ".flv": {},
	// fonts
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
}

// Resolve resolves an anchor href against the URL of the page it was
// found on. It returns false for hrefs that cannot yield a crawlable
// absolute URL: empty strings, fragment-only links, and
// javascript:/mailto:/tel: schemes.
func Resolve(href, baseURL string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	lower := strings.ToLower(href)
	for _, scheme := range skipSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	return base.ResolveReference(ref).String(), true
}

// IsInternal reports whether rawURL points at the crawl's seed host.
// Hosts must match exactly; subdomains are external.
func IsInternal(rawURL, seedHost string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, seedHost)
}

// IsSkippableResource reports whether rawURL points at a non-HTML
// resource by extension. Unparseable URLs are skippable, so garbage
// never reaches a fetch attempt.
func IsSkippableResource(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		return false
	}
	_, ok := resourceExts[ext]
	return ok
}
