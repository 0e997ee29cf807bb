package purell_test

import (
	"testing"

	"github.com/fwojciec/webmap"
	"github.com/fwojciec/webmap/purell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	n := purell.NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "https://example.com/a", "https://example.com/a"},
		{"fragment stripped", "https://example.com/a#section", "https://example.com/a"},
		{"scheme and host lowercased", "HTTPS://Example.COM/a", "https://example.com/a"},
		{"default https port dropped", "https://example.com:443/a", "https://example.com/a"},
		{"default http port dropped", "http://example.com:80/a", "http://example.com/a"},
		{"explicit port kept", "https://example.com:8443/a", "https://example.com:8443/a"},
		{"tracking params removed", "https://example.com/a?utm_source=x&utm_medium=y&id=1", "https://example.com/a?id=1"},
		{"fbclid and gclid removed", "https://example.com/a?fbclid=f&gclid=g", "https://example.com/a"},
		{"query params sorted", "https://example.com/a?b=2&a=1", "https://example.com/a?a=1&b=2"},
		{"duplicate slashes collapsed", "https://example.com/a//b///c", "https://example.com/a/b/c"},
		{"trailing slash stripped", "https://example.com/a/", "https://example.com/a"},
		{"root path kept", "https://example.com/", "https://example.com/"},
		{"collapse then strip", "https://example.com/a//", "https://example.com/a"},
		{"surrounding whitespace trimmed", "  https://example.com/a  ", "https://example.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := n.Normalize(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizer_Normalize_IsIdempotent(t *testing.T) {
	t.Parallel()

	n := purell.NewNormalizer()

	inputs := []string{
		"https://example.com/a#frag",
		"HTTP://Example.com:80//a//b/?z=1&a=2&utm_source=x",
		"https://example.com/",
		"https://example.com/a/b/",
	}

	for _, in := range inputs {
		once, err := n.Normalize(in)
		require.NoError(t, err)

		twice, err := n.Normalize(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice, "normalize must be a fixed point for %q", in)
	}
}

func TestNormalizer_Normalize_EquivalentFormsCollapse(t *testing.T) {
	t.Parallel()

	n := purell.NewNormalizer()

	canonical, err := n.Normalize("https://example.com/a?x=1&y=2")
	require.NoError(t, err)

	equivalents := []string{
		"https://example.com/a?x=1&y=2#top",
		"https://example.com:443/a?x=1&y=2",
		"https://example.com/a?y=2&x=1",
		"https://example.com/a?utm_campaign=c&x=1&y=2",
		"HTTPS://EXAMPLE.COM/a?x=1&y=2",
	}

	for _, in := range equivalents {
		got, err := n.Normalize(in)

		require.NoError(t, err)
		assert.Equal(t, canonical, got, in)
	}
}

func TestNormalizer_Normalize_RejectsNonURLs(t *testing.T) {
	t.Parallel()

	n := purell.NewNormalizer()

	for _, in := range []string{"not a url", "relative/path", "", "//missing-scheme.com/a"} {
		_, err := n.Normalize(in)

		assert.Equal(t, webmap.EINVALID, webmap.ErrorCode(err), in)
	}
}
