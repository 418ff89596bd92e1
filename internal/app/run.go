// Package app wires the pipeline stages together: fetch, project, render,
// present. It exists so the whole run is testable with a fake panel and an
// httptest provider.
package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"epdweather/internal/config"
	"epdweather/internal/display"
	"epdweather/internal/epd"
	appLog "epdweather/internal/log"
	"epdweather/internal/model"
	"epdweather/internal/owm"
	"epdweather/internal/render"
)

// Options carries the per-invocation switches from the CLI.
type Options struct {
	// RenderOnly skips the hardware stage entirely.
	RenderOnly bool
	// Dump writes preview.png and black.bin to DumpDir after rendering.
	Dump    bool
	DumpDir string

	// NewPanel opens the hardware panel. Nil means the real SPI driver;
	// tests install a fake.
	NewPanel func(ctx context.Context) (display.Panel, error)

	// Now supplies the clock for the UPDATED stamp. Nil means time.Now.
	Now func() time.Time
}

// Run executes one fetch → project → render → present cycle. Every stage
// failure is logged where it happens and returned; the caller decides the
// exit status. There are no retries anywhere — the scheduler owns those.
func Run(ctx context.Context, cfg *config.Config, apiKey string, opts Options) error {
	client, err := owm.NewClient(apiKey, cfg.Latitude, cfg.Longitude, cfg.Units,
		owm.WithBaseURL(cfg.BaseURL),
		owm.WithTimeout(time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
	)
	if err != nil {
		appLog.Error("weather client setup failed", err)
		return err
	}

	raw, err := client.Fetch(ctx)
	if err != nil {
		return err
	}

	reading, err := owm.Project(raw)
	if err != nil {
		return err
	}

	renderer, err := render.New(cfg.Font, cfg.Template, cfg.IconDir, model.UnitsFor(cfg.Units))
	if err != nil {
		appLog.Error("renderer setup failed", err, "font", cfg.Font)
		return err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	img, err := renderer.Compose(reading, now())
	if err != nil {
		return err
	}

	if opts.Dump {
		if err := display.Dump(img, opts.DumpDir); err != nil {
			appLog.Error("dump failed", err, "dir", opts.DumpDir)
			return err
		}
	}
	if opts.RenderOnly {
		appLog.Info("render-only run, skipping panel")
		return nil
	}

	newPanel := opts.NewPanel
	if newPanel == nil {
		newPanel = func(ctx context.Context) (display.Panel, error) {
			return epd.Open(ctx)
		}
	}
	panel, err := newPanel(ctx)
	if err != nil {
		appLog.Error("panel open failed", err)
		return err
	}
	if closer, ok := panel.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	return display.Show(panel, img)
}

// RunDaemon runs the pipeline once immediately and then on the configured
// cron schedule until ctx is canceled. Individual run failures are logged
// and swallowed: the next tick is the retry.
func RunDaemon(ctx context.Context, cfg *config.Config, apiKey string, opts Options) error {
	runOnce := func() {
		if err := Run(ctx, cfg, apiKey, opts); err != nil {
			appLog.Error("scheduled run failed", err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Refresh, runOnce); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", cfg.Refresh)
		return err
	}

	appLog.Info("daemon started", "refresh", cfg.Refresh)
	runOnce()
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	appLog.Info("daemon stopped")
	return nil
}
