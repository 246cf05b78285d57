package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/stealth"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
)

// webdriverOverride runs after the stealth evasions and pins the two
// properties bot checks on this site look at first.
const webdriverOverride = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
window.navigator.chrome = { runtime: {} };
`

type BrowserOptions struct {
	Headless    bool
	UserAgent   string
	ProxyURL    string
	PageTimeout time.Duration
	SettleDelay time.Duration
}

// Browser owns the single Chromium instance. It is launched once and closed
// once; every Render gets its own browser context.
type Browser struct {
	opts    BrowserOptions
	pw      *playwright.Playwright
	browser playwright.Browser
	mu      sync.Mutex
	closed  bool
}

func LaunchBrowser(opts BrowserOptions) (*Browser, error) {
	log.Info().Bool("headless", opts.Headless).Msg("Launching Chromium")

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-gpu",
			"--disable-features=IsolateOrigins,site-per-process",
		},
		IgnoreDefaultArgs: []string{"--enable-automation"},
	}
	if opts.ProxyURL != "" {
		launch.Proxy = &playwright.Proxy{Server: opts.ProxyURL}
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Info().Str("version", browser.Version()).Msg("Chromium ready")
	return &Browser{opts: opts, pw: pw, browser: browser}, nil
}

// Render opens a fresh context, navigates and waits for network quiescence,
// then captures title, screenshot and HTML. The context is always closed.
func (b *Browser) Render(ctx context.Context, pageURL string) (*RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("browser already closed")
	}

	bctx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(b.opts.UserAgent),
		Locale:    playwright.String("ja-JP"),
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": "ja,en-US;q=0.9,en;q=0.8",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		},
		Viewport: &playwright.Size{Width: 1366, Height: 900},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	defer bctx.Close()

	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(stealth.JS + webdriverOverride)}); err != nil {
		return nil, fmt.Errorf("failed to install init script: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	_, err = page.Goto(pageURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(b.opts.PageTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	// Late scripts keep filling the grid after networkidle
	if err := Wait(ctx, b.opts.SettleDelay); err != nil {
		return nil, err
	}

	rendered := &RenderedPage{URL: pageURL}
	rendered.Title, _ = page.Title()

	shot, err := page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(false)})
	if err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("Screenshot failed")
	}
	rendered.Screenshot = shot

	rendered.HTML, err = page.Content()
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	return rendered, nil
}

// Close releases the browser and the playwright driver. Later calls are no-ops.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var firstErr error
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			firstErr = err
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	log.Info().Msg("Browser closed")
	return firstErr
}
