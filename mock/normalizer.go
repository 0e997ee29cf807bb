package mock

import "github.com/fwojciec/webmap"

var _ webmap.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of webmap.Normalizer.
type Normalizer struct {
	NormalizeFn func(rawURL string) (string, error)
}

func (n *Normalizer) Normalize(rawURL string) (string, error) {
	return n.NormalizeFn(rawURL)
}
