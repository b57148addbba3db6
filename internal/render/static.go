package render

import (
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds how much of a directory page we read.
const maxBodyBytes = 2 * 1024 * 1024

// StaticOptions configures the static HTTP backend.
type StaticOptions struct {
	UserAgent string
	Timeout   time.Duration
	// PerHostRate is the sustained request rate allowed against one host.
	PerHostRate rate.Limit
}

// StaticBrowser fetches pages over plain HTTP. Free and fast, but blind to
// JavaScript; blocked or JS-shell pages surface ErrNeedsBrowser so the
// chain can escalate to Chrome.
type StaticBrowser struct {
	client *http.Client
	opts   StaticOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewStaticBrowser creates a static backend with sensible defaults.
func NewStaticBrowser(opts StaticOptions) *StaticBrowser {
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; leadgen/1.0)"
	}
	if opts.PerHostRate == 0 {
		opts.PerHostRate = 2
	}
	return &StaticBrowser{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 4,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (b *StaticBrowser) Name() string { return "static" }

// Close releases idle connections.
func (b *StaticBrowser) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

func (b *StaticBrowser) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	lim, ok := b.limiters[host]
	if !ok {
		lim = rate.NewLimiter(b.opts.PerHostRate, 1)
		b.limiters[host] = lim
	}
	return lim
}

// Open fetches and parses a page.
func (b *StaticBrowser) Open(ctx context.Context, rawURL string) (Page, error) {
	if err := b.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "static: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "static: create request")
	}
	req.Header.Set("User-Agent", b.opts.UserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "static: fetch %s", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "static: read body")
	}

	if blocked, kind := DetectBlock(resp.StatusCode, resp.Header, body); blocked {
		return nil, eris.Wrapf(ErrNeedsBrowser, "static: blocked (%s) at %s", kind, rawURL)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("static: status %d from %s", resp.StatusCode, rawURL)
	}

	html, err := decodeCharset(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "static: parse html")
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &staticPage{url: finalURL, html: html, doc: doc}, nil
}

// Follow navigates to the target URL. Click-only affordances cannot be
// followed without a browser.
func (b *StaticBrowser) Follow(ctx context.Context, p Page, t Target) (Page, error) {
	if t.URL == "" {
		return nil, ErrClickUnsupported
	}
	return b.Open(ctx, t.URL)
}

// decodeCharset converts the body to UTF-8 using the Content-Type charset.
// Unknown or missing charsets pass through unchanged.
func decodeCharset(body []byte, contentType string) (string, error) {
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if name := params["charset"]; name != "" && !strings.EqualFold(name, "utf-8") {
				enc, err := htmlindex.Get(name)
				if err == nil && enc != nil {
					decoded, err := enc.NewDecoder().Bytes(body)
					if err != nil {
						return "", eris.Wrapf(err, "static: decode charset %s", name)
					}
					return string(decoded), nil
				}
			}
		}
	}
	return string(body), nil
}

type staticPage struct {
	url  string
	html string
	doc  *goquery.Document
}

func (p *staticPage) URL() string            { return p.url }
func (p *staticPage) HTML() string           { return p.html }
func (p *staticPage) Doc() *goquery.Document { return p.doc }
