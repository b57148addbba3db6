// Package render loads directory pages and hands the extraction engine a
// parsed DOM. Two backends sit behind one interface: a static HTTP fetcher
// and a headless Chrome, chained so the cheap path is tried first and the
// browser only spins up for pages that need it.
package render

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// ErrNeedsBrowser signals that a static fetch hit anti-bot protection or a
// JS-only shell and the page should be retried in a real browser.
var ErrNeedsBrowser = eris.New("render: page requires a real browser")

// ErrClickUnsupported signals that the backend cannot follow a click-only
// pagination affordance.
var ErrClickUnsupported = eris.New("render: click navigation unsupported")

// Target describes where a pagination affordance leads: an absolute URL
// when the affordance exposes an href, otherwise a selector to click.
type Target struct {
	URL           string
	ClickSelector string
}

// Page is one loaded page. The document is parsed once and read-only.
type Page interface {
	URL() string
	HTML() string
	Doc() *goquery.Document
}

// Releaser is implemented by pages holding live browser resources.
type Releaser interface {
	Release()
}

// Release frees a page's backing resources, if it has any.
func Release(p Page) {
	if r, ok := p.(Releaser); ok {
		r.Release()
	}
}

// Browser loads pages and follows pagination targets.
type Browser interface {
	Name() string
	Open(ctx context.Context, url string) (Page, error)
	Follow(ctx context.Context, p Page, t Target) (Page, error)
	Close() error
}
