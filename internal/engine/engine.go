// Package engine drives the extraction run: adapter selection, container
// location, candidate extraction, normalization, deduplication, and
// pagination, URL by URL.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/adapter"
	"github.com/sells-group/leadgen-cli/internal/dedup"
	"github.com/sells-group/leadgen-cli/internal/extract"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/normalize"
	"github.com/sells-group/leadgen-cli/internal/render"
)

// Options configures a run. Validation happens at startup in the config
// layer; the engine assumes sane values.
type Options struct {
	MaxPages    int
	DelayMin    time.Duration
	DelayMax    time.Duration
	Concurrency int
	MaxNameLen  int
	DenyNames   []string
	DebugDir    string
}

// Engine owns the run state: the dedup key set and the accumulated leads.
type Engine struct {
	browser  render.Browser
	profiles []adapter.Profile
	seen     *dedup.Set
	names    normalize.NameFilter
	opts     Options
}

// New creates an engine with a fresh run state.
func New(browser render.Browser, profiles []adapter.Profile, opts Options) *Engine {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 3
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Engine{
		browser:  browser,
		profiles: profiles,
		seen:     dedup.NewSet(),
		names:    normalize.NewNameFilter(opts.MaxNameLen, opts.DenyNames),
		opts:     opts,
	}
}

// Run processes every input URL to completion and returns the accepted
// leads in per-URL, then page, then document order. Navigation failures are
// isolated per URL: whatever was collected before the failure is kept and
// the run continues with the next URL. Only context cancellation aborts.
func (e *Engine) Run(ctx context.Context, urls []string) ([]model.Lead, error) {
	perURL := make([][]model.Lead, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, u := range urls {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			perURL[i] = e.scrapeURL(gctx, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Lead
	for _, leads := range perURL {
		all = append(all, leads...)
	}

	zap.L().Info("run complete",
		zap.Int("urls", len(urls)),
		zap.Int("leads", len(all)),
	)
	return all, nil
}

// scrapeURL walks one URL's pages until the cap, a missing next affordance,
// or the loop guard stops it.
func (e *Engine) scrapeURL(ctx context.Context, rawURL string) []model.Lead {
	log := zap.L().With(zap.String("url", rawURL))

	e.politeDelay(ctx)
	page, err := e.browser.Open(ctx, rawURL)
	if err != nil {
		log.Warn("page load failed, skipping url", zap.Error(err))
		return nil
	}
	defer func() { render.Release(page) }()

	// One profile per URL, chosen on the first loaded page.
	profile := adapter.Select(rawURL, page.Doc(), e.profiles)
	log.Info("profile selected", zap.String("profile", profile.Name))

	visited := make(map[string]struct{})
	var leads []model.Lead

	for pageIndex := 1; ; pageIndex++ {
		visited[canonicalURL(page.URL())] = struct{}{}
		e.dumpDebug(rawURL, pageIndex, page)

		pageLeads := e.extractPage(page, profile)
		leads = append(leads, pageLeads...)
		log.Info("page scraped",
			zap.Int("page", pageIndex),
			zap.Int("accepted", len(pageLeads)),
		)

		target, ok := nextTarget(page, profile, pageIndex, e.opts.MaxPages, visited)
		if !ok {
			log.Debug("pagination stopped", zap.Int("pages", pageIndex))
			break
		}

		e.politeDelay(ctx)
		next, err := e.browser.Follow(ctx, page, target)
		if err != nil {
			// Keep what we have; the rest of this URL is abandoned.
			log.Warn("pagination failed, keeping collected pages", zap.Error(err))
			break
		}
		if _, seen := visited[canonicalURL(next.URL())]; seen && next.URL() != "" {
			log.Debug("pagination landed on a visited page, stopping")
			render.Release(next)
			break
		}
		render.Release(page)
		page = next
	}

	return leads
}

// extractPage runs the locate → extract → normalize → dedup pipeline over
// one page's containers, in document order.
func (e *Engine) extractPage(page render.Page, profile adapter.Profile) []model.Lead {
	var leads []model.Lead
	for _, container := range extract.Locate(page.Doc(), profile) {
		c := extract.FromContainer(container, profile)

		lead := model.Lead{
			Business: e.names.Business(c.Business),
			Name:     normalize.Freetext(c.Name),
			Number:   normalize.Phone(c.Phone),
			Email:    normalize.Email(c.Email),
			Location: normalize.Freetext(c.Location),
			Industry: normalize.Freetext(c.Industry),
		}

		// No surviving business name means the container was navigation or
		// footer noise, whatever else it carried.
		if lead.Business == "" {
			continue
		}
		if !e.seen.Accept(lead) {
			continue
		}
		leads = append(leads, lead)
	}
	return leads
}

// politeDelay sleeps a uniformly random duration within the configured
// bounds before a navigation. Returns early on cancellation; correctness
// never depends on the delay.
func (e *Engine) politeDelay(ctx context.Context) {
	if e.opts.DelayMax <= 0 {
		return
	}
	d := e.opts.DelayMin
	if span := e.opts.DelayMax - e.opts.DelayMin; span > 0 {
		d += time.Duration(rand.Int64N(int64(span)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

var slugRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// dumpDebug writes the raw page HTML for offline inspection when a debug
// directory is configured.
func (e *Engine) dumpDebug(rawURL string, pageIndex int, page render.Page) {
	if e.opts.DebugDir == "" {
		return
	}
	slug := slugRe.ReplaceAllString(rawURL, "-")
	if len(slug) > 80 {
		slug = slug[:80]
	}
	name := fmt.Sprintf("debug_%s_p%d.html", slug, pageIndex)
	path := filepath.Join(e.opts.DebugDir, name)
	if err := os.WriteFile(path, []byte(page.HTML()), 0o644); err != nil {
		zap.L().Warn("debug dump failed", zap.String("path", path), zap.Error(err))
	}
}
