package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/adapter"
)

func pageFor(t *testing.T, url, html string) *fakePage {
	t.Helper()
	return newFakePage(t, url, html)
}

func TestNextTarget_RelNextResolvesRelative(t *testing.T) {
	t.Parallel()
	p := pageFor(t, "https://d.example.com/dir/p1",
		`<html><body><a rel="next" href="p2">Next</a></body></html>`)

	target, ok := nextTarget(p, adapter.Fallback, 1, 5, map[string]struct{}{})
	require.True(t, ok)
	assert.Equal(t, "https://d.example.com/dir/p2", target.URL)
	assert.Empty(t, target.ClickSelector)
}

func TestNextTarget_PageCap(t *testing.T) {
	t.Parallel()
	p := pageFor(t, "https://d.example.com/p3",
		`<html><body><a rel="next" href="/p4">Next</a></body></html>`)

	_, ok := nextTarget(p, adapter.Fallback, 3, 3, map[string]struct{}{})
	assert.False(t, ok)
}

func TestNextTarget_DisabledSkipped(t *testing.T) {
	t.Parallel()

	// The first cascade hit is inert; the text fallback finds the live link.
	p := pageFor(t, "https://d.example.com/p1", `<html><body>
		<a rel="next" class="disabled" href="/p2">Next</a>
		<a href="/p2">Next page</a>
	</body></html>`)

	target, ok := nextTarget(p, adapter.Fallback, 1, 5, map[string]struct{}{})
	require.True(t, ok)
	assert.Equal(t, "https://d.example.com/p2", target.URL)
}

func TestNextTarget_AriaDisabled(t *testing.T) {
	t.Parallel()
	p := pageFor(t, "https://d.example.com/p1",
		`<html><body><a rel="next" aria-disabled="true" href="/p2">Next</a></body></html>`)

	_, ok := nextTarget(p, adapter.Fallback, 1, 5, map[string]struct{}{})
	assert.False(t, ok)
}

func TestNextTarget_VisitedRejected(t *testing.T) {
	t.Parallel()
	p := pageFor(t, "https://d.example.com/p2",
		`<html><body><a rel="next" href="/p2#top">Next</a></body></html>`)

	visited := map[string]struct{}{
		canonicalURL("https://d.example.com/p2"): {},
	}
	_, ok := nextTarget(p, adapter.Fallback, 1, 5, visited)
	assert.False(t, ok)
}

func TestNextTarget_TextFallback(t *testing.T) {
	t.Parallel()
	p := pageFor(t, "https://d.example.com/p1", `<html><body>
		<a href="/about">About us</a>
		<a href="/p2">»</a>
	</body></html>`)

	target, ok := nextTarget(p, adapter.Fallback, 1, 5, map[string]struct{}{})
	require.True(t, ok)
	assert.Equal(t, "https://d.example.com/p2", target.URL)
}

func TestNextTarget_ClickTarget(t *testing.T) {
	t.Parallel()

	// An href-less control becomes a click target addressed by its selector.
	p := pageFor(t, "https://d.example.com/p1",
		`<html><body><button aria-label="Next">Next</button></body></html>`)

	target, ok := nextTarget(p, adapter.Fallback, 1, 5, map[string]struct{}{})
	require.True(t, ok)
	assert.Empty(t, target.URL)
	assert.Equal(t, `button[aria-label="Next"]`, target.ClickSelector)
}

func TestNextTarget_JavascriptHrefIgnored(t *testing.T) {
	t.Parallel()
	p := pageFor(t, "https://d.example.com/p1",
		`<html><body><a rel="next" href="javascript:void(0)">Next</a></body></html>`)

	_, ok := nextTarget(p, adapter.Fallback, 1, 5, map[string]struct{}{})
	assert.False(t, ok)
}

func TestNextTarget_NoAffordance(t *testing.T) {
	t.Parallel()
	p := pageFor(t, "https://d.example.com/p1",
		`<html><body><a href="/contact">Contact us</a></body></html>`)

	_, ok := nextTarget(p, adapter.Fallback, 1, 5, map[string]struct{}{})
	assert.False(t, ok)
}

func TestCanonicalURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"fragment ignored", "https://d.example.com/p2#top", "https://d.example.com/p2", true},
		{"host case ignored", "https://D.Example.COM/p2", "https://d.example.com/p2", true},
		{"trailing slash ignored", "https://d.example.com/p2/", "https://d.example.com/p2", true},
		{"query significant", "https://d.example.com/dir?page=2", "https://d.example.com/dir?page=3", false},
		{"path significant", "https://d.example.com/p2", "https://d.example.com/p3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.same {
				assert.Equal(t, canonicalURL(tt.a), canonicalURL(tt.b))
			} else {
				assert.NotEqual(t, canonicalURL(tt.a), canonicalURL(tt.b))
			}
		})
	}
}
