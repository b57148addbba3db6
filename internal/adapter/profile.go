// Package adapter holds the extraction profiles applied to directory sites
// and the classification that picks one for a URL. A profile is plain data:
// selector cascades plus priorities. Supporting a new site means adding a
// profile, not a new type.
package adapter

import (
	"github.com/rotisserie/eris"
)

// Profile bundles the strategies used against one class of directory site.
// Immutable once selected; one profile applies to every page of a URL.
type Profile struct {
	Name string `yaml:"name"`

	// Hosts are substrings matched against the URL host during selection.
	Hosts []string `yaml:"hosts,omitempty"`
	// Signals are selectors whose presence on the first loaded page selects
	// this profile when no host matches.
	Signals []string `yaml:"signals,omitempty"`

	// ContainerSelectors is the cascade used to locate listing containers,
	// tried in order. The first selector yielding at least MinContainers
	// plausible containers wins.
	ContainerSelectors []string `yaml:"container_selectors"`
	MinContainers      int      `yaml:"min_containers,omitempty"`

	// Per-field selector cascades, tried in order within each container.
	TitleSelectors    []string `yaml:"title_selectors,omitempty"`
	PhoneSelectors    []string `yaml:"phone_selectors,omitempty"`
	EmailSelectors    []string `yaml:"email_selectors,omitempty"`
	AddressSelectors  []string `yaml:"address_selectors,omitempty"`
	IndustrySelectors []string `yaml:"industry_selectors,omitempty"`

	// NextSelectors locate the pagination affordance, tried in order.
	NextSelectors []string `yaml:"next_selectors"`
}

// Validate rejects profiles that could never extract anything. A malformed
// profile is a fatal startup error, not a runtime degrade.
func (p Profile) Validate() error {
	if p.Name == "" {
		return eris.New("adapter: profile missing name")
	}
	if len(p.ContainerSelectors) == 0 {
		return eris.Errorf("adapter: profile %q has empty container cascade", p.Name)
	}
	if len(p.NextSelectors) == 0 {
		return eris.Errorf("adapter: profile %q has empty pagination cascade", p.Name)
	}
	if p.MinContainers < 0 {
		return eris.Errorf("adapter: profile %q has negative min_containers", p.Name)
	}
	return nil
}

// MinRequired returns the minimum container count a cascade strategy must
// yield to win. Defaults to 2 so a single unrelated wrapper never matches.
func (p Profile) MinRequired() int {
	if p.MinContainers > 0 {
		return p.MinContainers
	}
	return 2
}

// defaultNextSelectors is shared by the built-in profiles.
var defaultNextSelectors = []string{
	`a[rel="next"]`,
	"a.next",
	"a.pagination-next",
	`button[aria-label="Next"]`,
	".pagination .next",
	".pager .next",
}

// Chamber covers generic chamber-of-commerce and member-directory sites with
// card-based layouts.
var Chamber = Profile{
	Name: "chamber",
	Signals: []string{
		"div.mn-listing",
		"div.gz-member",
		`div[class*="member"]`,
		`a[href*="/member/"]`,
	},
	ContainerSelectors: []string{
		"div.mn-listing",
		"div.gz-member",
		"div.member-item",
		"div.member",
		"div.listing-item",
		"div.business-listing",
		"div.directory-item",
		"li.member",
		"li.listing",
		".member-card",
		".business-card",
		".directory-entry",
		"article",
		"div.listing",
		`div[class*="member"]`,
		`div[class*="listing"]`,
		`div[class*="business"]`,
		`div[class*="directory"]`,
		`li[class*="member"]`,
		`li[class*="listing"]`,
		`div:has(a[href^="tel:"])`,
		`li:has(a[href^="tel:"])`,
	},
	TitleSelectors: []string{
		".mn-title a", ".mn-title",
		".gz-title a", ".gz-title",
		".member-name a", ".member-name",
		".business-name a", ".business-name",
		".company-name a", ".company-name",
		".listing-title a", ".listing-title",
		"h1 a", "h2 a", "h3 a", "h4 a",
		"h1", "h2", "h3", "h4",
		`a[href*="/business/"]`,
		`a[href*="/member/"]`,
		`a[href*="/listing/"]`,
		".title a", ".title",
	},
	PhoneSelectors: []string{
		".phone", ".listing-phone", ".directory-phone", ".telephone",
	},
	EmailSelectors: []string{
		".email", ".listing-email", ".directory-email",
	},
	AddressSelectors: []string{
		"address", `[itemprop="address"]`,
		".address", ".listing-address", ".directory-address", ".location",
	},
	IndustrySelectors: []string{
		".category", ".categories", ".tags", ".industry", ".business-type",
		`[itemprop="category"]`,
	},
	NextSelectors: defaultNextSelectors,
}

// Review covers review-style sites (Yelp, Foursquare and lookalikes) where
// emails are rarely exposed and phones hide behind data attributes.
var Review = Profile{
	Name:  "review",
	Hosts: []string{"yelp.com", "foursquare.com"},
	Signals: []string{
		`[data-testid="serp-ia-card"]`,
		".biz-listing",
		`span[class*="star"]`,
		`div[class*="review-count"]`,
	},
	ContainerSelectors: []string{
		`[data-testid="serp-ia-card"]`,
		".search-result",
		".biz-listing",
		`div[class*="businessName"]`,
	},
	TitleSelectors: []string{
		"h3 a", "h4 a",
		".business-name a",
		`a[href*="/biz/"]`,
	},
	PhoneSelectors: []string{
		`[data-testid="phone-number"]`, ".phone-number",
	},
	AddressSelectors: []string{
		".address", `[data-testid="address"]`,
	},
	IndustrySelectors: []string{
		".category", ".categories a",
	},
	NextSelectors: defaultNextSelectors,
}

// Fallback is the maximally permissive profile for unknown sites: partial
// extraction beats none.
var Fallback = Profile{
	Name: "fallback",
	ContainerSelectors: []string{
		"article",
		`div[class*="listing"]`,
		`div[class*="member"]`,
		`div[class*="business"]`,
		`div[class*="directory"]`,
		`li[class*="listing"]`,
		`li[class*="member"]`,
		`div:has(a[href^="tel:"])`,
		`li:has(a[href^="tel:"])`,
		`div:has(a[href^="mailto:"])`,
	},
	TitleSelectors: []string{
		"h1 a", "h2 a", "h3 a", "h4 a",
		"h1", "h2", "h3", "h4",
		".title a", ".title",
	},
	AddressSelectors: []string{
		"address", `[itemprop="address"]`, ".address", ".location",
	},
	IndustrySelectors: []string{
		".category", ".categories", ".tags",
	},
	NextSelectors: defaultNextSelectors,
}

// Builtin returns the built-in profiles in selection priority order, the
// fallback last.
func Builtin() []Profile {
	return []Profile{Review, Chamber, Fallback}
}
