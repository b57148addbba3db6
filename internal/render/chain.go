package render

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Chain tries the static backend first and escalates to Chrome when a page
// is blocked, is a JS shell, or needs a click to paginate. Either backend
// may be nil; the chain uses what it has.
type Chain struct {
	static *StaticBrowser
	chrome *ChromeBrowser
}

// NewChain builds a rendering chain from the available backends.
func NewChain(static *StaticBrowser, chrome *ChromeBrowser) *Chain {
	return &Chain{static: static, chrome: chrome}
}

func (c *Chain) Name() string { return "chain" }

// Close shuts down both backends.
func (c *Chain) Close() error {
	var firstErr error
	if c.static != nil {
		firstErr = c.static.Close()
	}
	if c.chrome != nil {
		if err := c.chrome.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open fetches statically, retrying in Chrome when the page demands it.
func (c *Chain) Open(ctx context.Context, rawURL string) (Page, error) {
	if c.static == nil {
		if c.chrome == nil {
			return nil, eris.New("render: no backends configured")
		}
		return c.chrome.Open(ctx, rawURL)
	}

	page, err := c.static.Open(ctx, rawURL)
	if err == nil {
		return page, nil
	}
	if c.chrome != nil && eris.Is(err, ErrNeedsBrowser) {
		zap.L().Debug("render: escalating to chrome",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return c.chrome.Open(ctx, rawURL)
	}
	return nil, err
}

// Follow continues in whichever backend owns the page. A click-only target
// on a static page re-opens the page in Chrome and clicks there.
func (c *Chain) Follow(ctx context.Context, p Page, t Target) (Page, error) {
	if _, isChrome := p.(*chromePage); isChrome && c.chrome != nil {
		return c.chrome.Follow(ctx, p, t)
	}

	if t.URL != "" {
		return c.Open(ctx, t.URL)
	}

	if c.chrome == nil {
		return nil, ErrClickUnsupported
	}
	zap.L().Debug("render: click-only pagination, replaying page in chrome",
		zap.String("url", p.URL()),
	)
	replay, err := c.chrome.Open(ctx, p.URL())
	if err != nil {
		return nil, err
	}
	next, err := c.chrome.Follow(ctx, replay, t)
	if err != nil {
		Release(replay)
		return nil, err
	}
	return next, nil
}
