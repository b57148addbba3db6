package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/adapter"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/engine"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/output"
	"github.com/sells-group/leadgen-cli/internal/render"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape directory URLs and write leads to JSON",
	Long: `Scrape one or more business-directory URLs.

Each URL is classified to an extraction profile, paginated up to --max-pages,
and its listings are normalized and deduplicated across the whole run. The
result is a JSON array ready for CRM import.

Check robots.txt and the site's terms of service before scraping; the tool
rate-limits and injects randomized delays but cannot grant permission.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyScrapeFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		urls, _ := cmd.Flags().GetStringSlice("urls")
		if len(urls) == 0 {
			return eris.New("scrape: at least one --urls value is required")
		}

		profiles, err := adapter.Load(cfg.Scrape.ProfilesFile)
		if err != nil {
			return err
		}

		if cfg.Scrape.DebugDir != "" {
			if err := os.MkdirAll(cfg.Scrape.DebugDir, 0o755); err != nil {
				return eris.Wrapf(err, "scrape: create debug dir %s", cfg.Scrape.DebugDir)
			}
		}

		browser := newBrowser(cfg.Render)
		defer browser.Close() //nolint:errcheck

		eng := engine.New(browser, profiles, engineOptions(cfg.Scrape))

		zap.L().Info("starting scrape",
			zap.Strings("urls", urls),
			zap.String("list", cfg.Scrape.ListName),
			zap.Int("max_pages", cfg.Scrape.MaxPages),
		)

		leads, err := eng.Run(ctx, urls)
		if err != nil {
			return eris.Wrap(err, "scrape")
		}

		model.Stamp(leads, cfg.Scrape.ListName, time.Now())
		if err := output.Write(cfg.Scrape.Out, leads); err != nil {
			return err
		}

		zap.L().Info("scrape complete", zap.Int("leads", len(leads)))
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringSlice("urls", nil, "directory URLs to scrape (repeatable or comma-separated)")
	scrapeCmd.Flags().String("list-name", "", "list name tagged onto each lead")
	scrapeCmd.Flags().String("out", "", "output file path")
	scrapeCmd.Flags().Int("max-pages", 0, "maximum pages per URL")
	scrapeCmd.Flags().Float64("delay-min", -1, "minimum delay before each navigation, seconds")
	scrapeCmd.Flags().Float64("delay-max", -1, "maximum delay before each navigation, seconds")
	scrapeCmd.Flags().String("profiles", "", "YAML file with custom extraction profiles")
	scrapeCmd.Flags().String("debug-dir", "", "dump each visited page's HTML into this directory")
	scrapeCmd.Flags().Int("concurrency", 0, "URLs processed in parallel")
	scrapeCmd.Flags().String("renderer", "", "rendering backend: auto, static, or chrome")
	rootCmd.AddCommand(scrapeCmd)
}

// applyScrapeFlags overlays explicitly-set flags onto the loaded config.
func applyScrapeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("list-name") {
		cfg.Scrape.ListName, _ = f.GetString("list-name")
	}
	if f.Changed("out") {
		cfg.Scrape.Out, _ = f.GetString("out")
	}
	if f.Changed("max-pages") {
		cfg.Scrape.MaxPages, _ = f.GetInt("max-pages")
	}
	if f.Changed("delay-min") {
		cfg.Scrape.DelayMin, _ = f.GetFloat64("delay-min")
	}
	if f.Changed("delay-max") {
		cfg.Scrape.DelayMax, _ = f.GetFloat64("delay-max")
	}
	if f.Changed("profiles") {
		cfg.Scrape.ProfilesFile, _ = f.GetString("profiles")
	}
	if f.Changed("debug-dir") {
		cfg.Scrape.DebugDir, _ = f.GetString("debug-dir")
	}
	if f.Changed("concurrency") {
		cfg.Scrape.Concurrency, _ = f.GetInt("concurrency")
	}
	if f.Changed("renderer") {
		cfg.Render.Mode, _ = f.GetString("renderer")
	}
}

// newBrowser builds the rendering backend for the configured mode.
func newBrowser(rc config.RenderConfig) render.Browser {
	timeout := time.Duration(rc.TimeoutSecs) * time.Second

	var static *render.StaticBrowser
	if rc.Mode == "auto" || rc.Mode == "static" {
		static = render.NewStaticBrowser(render.StaticOptions{
			UserAgent:   rc.UserAgent,
			Timeout:     timeout,
			PerHostRate: rate.Limit(rc.PerHostRate),
		})
	}

	var chrome *render.ChromeBrowser
	if rc.Mode == "auto" || rc.Mode == "chrome" {
		chrome = render.NewChromeBrowser(render.ChromeOptions{
			UserAgent: rc.UserAgent,
			Timeout:   timeout,
		})
	}

	return render.NewChain(static, chrome)
}

// engineOptions maps the scrape config onto engine options.
func engineOptions(sc config.ScrapeConfig) engine.Options {
	return engine.Options{
		MaxPages:    sc.MaxPages,
		DelayMin:    time.Duration(sc.DelayMin * float64(time.Second)),
		DelayMax:    time.Duration(sc.DelayMax * float64(time.Second)),
		Concurrency: sc.Concurrency,
		MaxNameLen:  sc.MaxNameLen,
		DenyNames:   sc.DenyNames,
		DebugDir:    sc.DebugDir,
	}
}
