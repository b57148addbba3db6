package render

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// ChromeOptions configures the headless-Chrome backend.
type ChromeOptions struct {
	UserAgent string
	Timeout   time.Duration
}

// ChromeBrowser renders pages in headless Chrome via chromedp. One browser
// process is shared; each opened page gets its own tab so click-based
// pagination can continue against live state.
type ChromeBrowser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	opts          ChromeOptions
}

// NewChromeBrowser launches the shared browser process lazily on first use.
func NewChromeBrowser(opts ChromeOptions) *ChromeBrowser {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &ChromeBrowser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		opts:          opts,
	}
}

func (b *ChromeBrowser) Name() string { return "chrome" }

// Close shuts down the browser process.
func (b *ChromeBrowser) Close() error {
	b.browserCancel()
	b.allocCancel()
	return nil
}

// Open loads a URL in a fresh tab and snapshots its DOM.
func (b *ChromeBrowser) Open(ctx context.Context, rawURL string) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)

	page, err := b.snapshot(ctx, tabCtx, tabCancel,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		tabCancel()
		return nil, eris.Wrapf(err, "chrome: open %s", rawURL)
	}
	return page, nil
}

// Follow continues from an already-open page: a URL target navigates the
// tab, a click target clicks the affordance in place.
func (b *ChromeBrowser) Follow(ctx context.Context, p Page, t Target) (Page, error) {
	cp, ok := p.(*chromePage)
	if !ok {
		if t.URL == "" {
			return nil, ErrClickUnsupported
		}
		return b.Open(ctx, t.URL)
	}

	var action chromedp.Action
	switch {
	case t.ClickSelector != "":
		action = chromedp.Click(t.ClickSelector, chromedp.ByQuery, chromedp.NodeVisible)
	case t.URL != "":
		action = chromedp.Navigate(t.URL)
	default:
		return nil, eris.New("chrome: empty pagination target")
	}

	page, err := b.snapshot(ctx, cp.tabCtx, cp.tabCancel,
		action,
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return nil, eris.Wrap(err, "chrome: follow")
	}
	// The tab moved on; the old snapshot no longer owns it.
	cp.tabCancel = nil
	return page, nil
}

// snapshot runs the actions with the configured timeout, then captures the
// tab's location and DOM into an immutable page.
func (b *ChromeBrowser) snapshot(ctx, tabCtx context.Context, tabCancel context.CancelFunc, actions ...chromedp.Action) (*chromePage, error) {
	runCtx, cancel := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var html, location string
	all := append(actions,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := chromedp.Run(runCtx, all...); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "chrome: parse html")
	}

	return &chromePage{
		url:       location,
		html:      html,
		doc:       doc,
		tabCtx:    tabCtx,
		tabCancel: tabCancel,
	}, nil
}

type chromePage struct {
	url       string
	html      string
	doc       *goquery.Document
	tabCtx    context.Context
	tabCancel context.CancelFunc
}

func (p *chromePage) URL() string            { return p.url }
func (p *chromePage) HTML() string           { return p.html }
func (p *chromePage) Doc() *goquery.Document { return p.doc }

// Release closes the backing tab.
func (p *chromePage) Release() {
	if p.tabCancel != nil {
		p.tabCancel()
		p.tabCancel = nil
	}
}
