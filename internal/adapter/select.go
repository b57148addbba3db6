package adapter

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Select picks the profile to apply to a URL. Host substrings are checked
// first, then structural signals on the first loaded page. Unknown sites
// degrade to the last profile in the list (the fallback); Select never
// fails and performs read-only inspection only.
func Select(rawURL string, doc *goquery.Document, profiles []Profile) Profile {
	if len(profiles) == 0 {
		return Fallback
	}

	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	for _, p := range profiles {
		for _, h := range p.Hosts {
			if h != "" && strings.Contains(host, strings.ToLower(h)) {
				zap.L().Debug("adapter: profile selected by host",
					zap.String("profile", p.Name),
					zap.String("host", host),
				)
				return p
			}
		}
	}

	if doc != nil {
		for _, p := range profiles {
			for _, sig := range p.Signals {
				if doc.Find(sig).Length() > 0 {
					zap.L().Debug("adapter: profile selected by page signal",
						zap.String("profile", p.Name),
						zap.String("signal", sig),
					)
					return p
				}
			}
		}
	}

	fallback := profiles[len(profiles)-1]
	zap.L().Debug("adapter: no host or signal match, using fallback",
		zap.String("profile", fallback.Name),
		zap.String("url", rawURL),
	)
	return fallback
}
