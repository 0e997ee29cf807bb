package crawl

import "github.com/bits-and-blooms/bloom/v3"

// frontierFalsePositiveRate sizes the Bloom filter fronting the
// discovered set. False positives only cost a map lookup; membership
// is always confirmed exactly.
const frontierFalsePositiveRate = 0.01

// Frontier is a FIFO crawl queue with an exact discovered-URL set.
// Queued entries keep their original, unnormalized form in discovery
// order; callers supply the normalized form as the dedup key. A Bloom
// filter fronts the set so the common case, a never-seen URL, skips
// the map lookup. All state is scoped to one crawl invocation.
type Frontier struct {
	filter     *bloom.BloomFilter
	discovered map[string]struct{}
	queue      []string
}

// NewFrontier creates a frontier sized for n expected URLs.
func NewFrontier(n uint) *Frontier {
	return &Frontier{
		filter:     bloom.NewWithEstimates(n, frontierFalsePositiveRate),
		discovered: make(map[string]struct{}),
		queue:      []string{},
	}
}

// Observe records a normalized URL as discovered. It returns true the
// first time a key is seen; a key observed once is never new again.
func (f *Frontier) Observe(normalized string) bool {
	if f.filter.TestString(normalized) {
		// Possible repeat; confirm against the exact set.
		if _, ok := f.discovered[normalized]; ok {
			return false
		}
	}
	f.filter.AddString(normalized)
	f.discovered[normalized] = struct{}{}
	return true
}

// Discovered reports whether a normalized URL has been observed.
func (f *Frontier) Discovered(normalized string) bool {
	if !f.filter.TestString(normalized) {
		return false
	}
	_, ok := f.discovered[normalized]
	return ok
}

// Push enqueues a URL in its original form. Entries are dequeued in
// insertion order and never re-enqueued.
func (f *Frontier) Push(originalURL string) {
	f.queue = append(f.queue, originalURL)
}

// Pop removes and returns the oldest queued URL.
// The bool result is false if the queue is empty.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	return u, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// DiscoveredCount returns the number of distinct normalized URLs
// observed so far.
func (f *Frontier) DiscoveredCount() int {
	return len(f.discovered)
}
