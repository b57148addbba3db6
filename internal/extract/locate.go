// Package extract locates listing containers on a directory page and pulls
// raw field candidates out of each one. Selection of the winning candidate
// is deferred to the normalize package, so every strategy keeps all its
// hits instead of short-circuiting.
package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/adapter"
)

var phoneTextRe = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

// Locate applies the profile's container cascade in priority order and
// returns each matched container as its own selection, in document order.
// A strategy only wins when it yields at least the profile's minimum count,
// so a single unrelated wrapper element never matches. An empty result
// means "no listings on this page", not an error.
func Locate(doc *goquery.Document, p adapter.Profile) []*goquery.Selection {
	min := p.MinRequired()

	for _, sel := range p.ContainerSelectors {
		matched := doc.Find(sel)
		if matched.Length() < min {
			continue
		}
		zap.L().Debug("extract: container strategy won",
			zap.String("selector", sel),
			zap.Int("containers", matched.Length()),
		)
		return split(matched)
	}

	// Last resort: the deepest div/li elements whose own text carries a
	// phone number. Interstitial pages legitimately yield nothing here.
	if containers := phoneTextContainers(doc); len(containers) > 0 {
		zap.L().Debug("extract: phone-text fallback won",
			zap.Int("containers", len(containers)),
		)
		return containers
	}

	return nil
}

// split turns one multi-node selection into per-node selections, preserving
// document order.
func split(matched *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, matched.Length())
	matched.Each(func(i int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// phoneTextContainers returns div/li nodes containing a phone-shaped string
// where no descendant div/li contains one, so each listing is counted once
// at its deepest wrapper rather than at every ancestor.
func phoneTextContainers(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find("div,li").Each(func(i int, s *goquery.Selection) {
		if !phoneTextRe.MatchString(s.Text()) {
			return
		}
		deeper := false
		s.Find("div,li").Each(func(j int, child *goquery.Selection) {
			if phoneTextRe.MatchString(child.Text()) {
				deeper = true
			}
		})
		if !deeper {
			out = append(out, s)
		}
	})
	return out
}
