// Package normalize turns raw extraction candidates into canonical field
// values. Each function walks its candidates in priority order and returns
// the first one that validates, or empty. Everything here is deterministic
// and side-effect free.
package normalize

import (
	"regexp"
	"strings"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// defaultDenylist holds navigation/footer phrases that are never business
// names. Matched case-insensitively after whitespace collapse.
var defaultDenylist = []string{
	"next",
	"next page",
	"previous",
	"prev",
	"home",
	"search",
	"contact us",
	"directory",
	"business directory search",
	"find a business",
	"member directory",
	"more info",
	"learn more",
	"view details",
}

// Phone returns the first candidate whose digits form a plausible national
// number: exactly 10 digits, or 11 with a leading country "1". The digits
// are returned as-is, never reformatted.
func Phone(candidates []string) string {
	for _, c := range candidates {
		digits := nonDigitRe.ReplaceAllString(c, "")
		if len(digits) == 10 {
			return digits
		}
		if len(digits) == 11 && digits[0] == '1' {
			return digits
		}
	}
	return ""
}

// Email returns the first candidate matching a basic local@domain.tld shape.
func Email(candidates []string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if emailRe.MatchString(c) {
			return c
		}
	}
	return ""
}

// Freetext returns the first non-empty candidate after whitespace collapse.
// Used for address and industry, whose formats vary too widely to validate.
func Freetext(candidates []string) string {
	for _, c := range candidates {
		if v := CollapseSpace(c); v != "" {
			return v
		}
	}
	return ""
}

// CollapseSpace trims and collapses all interior whitespace runs to single
// spaces.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// NameFilter validates business-name candidates. It is the anti-noise gate
// that keeps navigation and footer text out of the output.
type NameFilter struct {
	MaxLen   int
	denylist map[string]struct{}
}

// NewNameFilter builds a filter with the given length bound and extra
// denylist entries on top of the defaults. maxLen <= 0 selects the default
// bound of 120 runes.
func NewNameFilter(maxLen int, extraDenied []string) NameFilter {
	if maxLen <= 0 {
		maxLen = 120
	}
	deny := make(map[string]struct{}, len(defaultDenylist)+len(extraDenied))
	for _, d := range defaultDenylist {
		deny[d] = struct{}{}
	}
	for _, d := range extraDenied {
		deny[strings.ToLower(CollapseSpace(d))] = struct{}{}
	}
	return NameFilter{MaxLen: maxLen, denylist: deny}
}

// Business returns the first candidate that survives the filter: non-empty
// after trimming, not denylisted boilerplate, and under the length bound.
// Multi-line captures keep only their first line, since directory cards
// often run the name and address together in one text block.
func (f NameFilter) Business(candidates []string) string {
	for _, c := range candidates {
		if line, _, ok := strings.Cut(strings.TrimSpace(c), "\n"); ok {
			c = line
		}
		v := CollapseSpace(c)
		if v == "" {
			continue
		}
		if _, denied := f.denylist[strings.ToLower(v)]; denied {
			continue
		}
		if len([]rune(v)) > f.MaxLen {
			continue
		}
		return v
	}
	return ""
}
