package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/leadgen-cli/internal/adapter"
)

var (
	emailTextRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// streetRe matches "44260 Ice Rink Plaza"-style street lines.
	streetRe = regexp.MustCompile(`(?i)\d{1,6}\s+\w[\w\s.,'#\-]*(?:street|st|avenue|ave|road|rd|boulevard|blvd|drive|dr|lane|ln|circle|cir|court|ct|plaza|pkwy|parkway|place|pl|suite|way)\b`)
	// stateZipRe matches trailing "VA 20147" state/zip pairs.
	stateZipRe = regexp.MustCompile(`\b[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`)
)

// rawTextBound caps the last-resort business-name capture taken from the
// container's whole text.
const rawTextBound = 120

// Candidates holds the raw, not-yet-validated strings collected for each
// field of one listing container, in strategy priority order.
type Candidates struct {
	Business []string
	Name     []string
	Phone    []string
	Email    []string
	Location []string
	Industry []string
}

// FromContainer runs every field's strategy list against one container.
// Strategies never fail on malformed markup; a missing element just
// contributes no candidate and the next strategy is tried.
func FromContainer(s *goquery.Selection, p adapter.Profile) Candidates {
	return Candidates{
		Business: businessCandidates(s, p),
		Name:     selectorTexts(s, []string{".contact-name", ".rep-name", `[itemprop="employee"]`}),
		Phone:    phoneCandidates(s, p),
		Email:    emailCandidates(s, p),
		Location: addressCandidates(s, p),
		Industry: industryCandidates(s, p),
	}
}

// businessCandidates: profile title cascade (headings and title classes),
// then strongest emphasized text, then the first link's visible text, then
// the container's trimmed text as last resort. The raw text has phone and
// email fragments removed first, otherwise a bare nav control next to a
// phone number reads as "Next(571) 520-7858" and slips past the denylist.
func businessCandidates(s *goquery.Selection, p adapter.Profile) []string {
	var out []string
	out = appendTexts(out, s, p.TitleSelectors)
	out = appendTexts(out, s, []string{"strong a", "strong", "b"})
	if first := s.Find("a").First(); first.Length() > 0 {
		out = appendCandidate(out, first.Text())
	}
	raw := phoneTextRe.ReplaceAllString(s.Text(), "")
	raw = emailTextRe.ReplaceAllString(raw, "")
	if raw = strings.TrimSpace(raw); raw != "" {
		runes := []rune(raw)
		if len(runes) > rawTextBound {
			raw = string(runes[:rawTextBound])
		}
		out = appendCandidate(out, raw)
	}
	return out
}

// phoneCandidates: tel: link targets are the most reliable source, then the
// profile's phone selectors, then phone-shaped text anywhere in the
// container.
func phoneCandidates(s *goquery.Selection, p adapter.Profile) []string {
	var out []string
	s.Find(`a[href^="tel:"]`).Each(func(i int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			out = appendCandidate(out, strings.TrimPrefix(href, "tel:"))
		}
	})
	out = appendTexts(out, s, p.PhoneSelectors)
	for _, m := range phoneTextRe.FindAllString(s.Text(), -1) {
		out = appendCandidate(out, m)
	}
	return out
}

// emailCandidates: mailto: link targets first, then selector hits, then an
// email-shaped pattern over the container text.
func emailCandidates(s *goquery.Selection, p adapter.Profile) []string {
	var out []string
	s.Find(`a[href^="mailto:"]`).Each(func(i int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			addr := strings.TrimPrefix(href, "mailto:")
			if q := strings.IndexByte(addr, '?'); q >= 0 {
				addr = addr[:q]
			}
			out = appendCandidate(out, addr)
		}
	})
	out = appendTexts(out, s, p.EmailSelectors)
	for _, m := range emailTextRe.FindAllString(s.Text(), -1) {
		out = appendCandidate(out, m)
	}
	return out
}

// addressCandidates: address-semantic markup first, then free-text lines
// with street-number or state/zip structure.
func addressCandidates(s *goquery.Selection, p adapter.Profile) []string {
	var out []string
	out = appendTexts(out, s, p.AddressSelectors)
	for _, line := range strings.Split(s.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if streetRe.MatchString(line) || stateZipRe.MatchString(line) {
			out = appendCandidate(out, line)
		}
	}
	return out
}

// industryCandidates: category/tag-like markup only; absent otherwise.
func industryCandidates(s *goquery.Selection, p adapter.Profile) []string {
	return appendTexts(nil, s, p.IndustrySelectors)
}

// selectorTexts collects the text of the first match of each selector.
func selectorTexts(s *goquery.Selection, selectors []string) []string {
	return appendTexts(nil, s, selectors)
}

func appendTexts(out []string, s *goquery.Selection, selectors []string) []string {
	for _, sel := range selectors {
		if hit := s.Find(sel).First(); hit.Length() > 0 {
			out = appendCandidate(out, hit.Text())
		}
	}
	return out
}

// appendCandidate trims and appends, skipping empties and exact repeats.
func appendCandidate(out []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return out
	}
	for _, existing := range out {
		if existing == v {
			return out
		}
	}
	return append(out, v)
}
