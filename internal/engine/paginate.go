package engine

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/leadgen-cli/internal/adapter"
	"github.com/sells-group/leadgen-cli/internal/render"
)

// nextWords are link texts treated as pagination affordances when no
// selector in the cascade matches.
var nextWords = map[string]struct{}{
	"next":      {},
	"next page": {},
	">":         {},
	"»":         {},
}

// nextTarget locates the page's "next" affordance and decides whether to
// continue. It returns ok=false (Stop) when the page cap is reached, no
// usable affordance exists, the affordance is disabled, or the resolved
// target points back at an already-visited page — the loop guard for sites
// whose "next" degrades to a self-link after the last real page.
func nextTarget(p render.Page, prof adapter.Profile, pageIndex, maxPages int, visited map[string]struct{}) (render.Target, bool) {
	if pageIndex >= maxPages {
		return render.Target{}, false
	}

	doc := p.Doc()
	base := p.URL()

	for _, sel := range prof.NextSelectors {
		hit := doc.Find(sel).First()
		if hit.Length() == 0 || isDisabled(hit) {
			continue
		}
		if t, ok := resolveTarget(hit, sel, base, visited); ok {
			return t, true
		}
	}

	// Text fallback: any live link whose visible text is a "next" word.
	var fallback render.Target
	found := false
	doc.Find("a").EachWithBreak(func(i int, a *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		if _, ok := nextWords[text]; !ok || isDisabled(a) {
			return true
		}
		if t, ok := resolveTarget(a, "", base, visited); ok {
			fallback = t
			found = true
			return false
		}
		return true
	})
	if found {
		return fallback, true
	}

	return render.Target{}, false
}

// resolveTarget turns a matched affordance into a navigation target. An
// href resolves to an absolute URL and is rejected when it lands on a page
// already visited; an href-less control becomes a click target addressed by
// the selector that found it.
func resolveTarget(el *goquery.Selection, sel, base string, visited map[string]struct{}) (render.Target, bool) {
	href, hasHref := el.Attr("href")
	href = strings.TrimSpace(href)

	if hasHref && href != "" && href != "#" && !strings.HasPrefix(strings.ToLower(href), "javascript:") {
		abs := absoluteURL(base, href)
		if abs == "" {
			return render.Target{}, false
		}
		if _, seen := visited[canonicalURL(abs)]; seen {
			return render.Target{}, false
		}
		return render.Target{URL: abs}, true
	}

	if sel != "" {
		return render.Target{ClickSelector: sel}, true
	}
	return render.Target{}, false
}

// isDisabled reports whether an affordance is present but inert.
func isDisabled(el *goquery.Selection) bool {
	if _, ok := el.Attr("disabled"); ok {
		return true
	}
	if v, ok := el.Attr("aria-disabled"); ok && strings.EqualFold(v, "true") {
		return true
	}
	if class, ok := el.Attr("class"); ok && strings.Contains(strings.ToLower(class), "disabled") {
		return true
	}
	return false
}

// absoluteURL resolves href against the page URL.
func absoluteURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}

// canonicalURL normalizes a URL for visited-set comparison: fragments
// dropped, host lowercased, trailing slash trimmed.
func canonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
