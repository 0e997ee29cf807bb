package webmap

// ChangeFreq is the sitemaps.org changefreq value attached to every
// entry in a rendered sitemap.
type ChangeFreq string

// Valid changefreq values per the sitemaps.org protocol.
const (
	ChangeFreqAlways  ChangeFreq = "always"
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
	ChangeFreqNever   ChangeFreq = "never"
)

// Valid reports whether f is one of the protocol's changefreq values.
func (f ChangeFreq) Valid() bool {
	switch f {
	case ChangeFreqAlways, ChangeFreqHourly, ChangeFreqDaily,
		ChangeFreqWeekly, ChangeFreqMonthly, ChangeFreqYearly, ChangeFreqNever:
		return true
	}
	return false
}

// DefaultPriority is the priority assigned when the caller does not
// pick one.
const DefaultPriority = 0.5

// MaxSitemapURLs is the entry ceiling of a single sitemap file per the
// sitemaps.org protocol.
const MaxSitemapURLs = 50000

// RenderOptions control the per-entry metadata of a rendered sitemap.
// The zero value renders priority 0.0; use NewRenderOptions for the
// documented defaults.
type RenderOptions struct {
	// ChangeFreq is attached to every entry. Empty means weekly.
	ChangeFreq ChangeFreq

	// Priority is attached to every entry. Must be in [0, 1].
	Priority float64

	// IncludeLastMod attaches a lastmod field holding the current UTC
	// date, identical for every entry of one render call.
	IncludeLastMod bool
}

// NewRenderOptions returns options with the protocol defaults applied.
func NewRenderOptions() RenderOptions {
	return RenderOptions{
		ChangeFreq: ChangeFreqWeekly,
		Priority:   DefaultPriority,
	}
}

// Validate returns an EINVALID error if the options are out of range.
func (o RenderOptions) Validate() error {
	if o.ChangeFreq != "" && !o.ChangeFreq.Valid() {
		return Errorf(EINVALID, "changeFreq %q is not a valid change frequency", o.ChangeFreq)
	}
	if o.Priority < 0 || o.Priority > 1 {
		return Errorf(EINVALID, "priority %v must be between 0.0 and 1.0", o.Priority)
	}
	return nil
}

// SitemapRenderer renders an ordered URL list as a sitemaps.org XML
// document. Rendering is pure: the same inputs always produce the same
// document, modulo the current-date lastmod field.
type SitemapRenderer interface {
	Render(urls []string, opts RenderOptions) (string, error)
}
