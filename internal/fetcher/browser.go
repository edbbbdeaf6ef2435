package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/types"
)

// RenderWait describes how long to wait for a search-results marker before
// reading the rendered page.
type RenderWait struct {
	// Selector is the CSS selector of the result-marker element. Empty
	// means no marker wait.
	Selector string

	// Timeout bounds the marker wait.
	Timeout time.Duration

	// FallbackSleep is slept when the marker never appears, giving the
	// page a last chance to render before scraping whatever is there.
	FallbackSleep time.Duration

	// Settle is an unconditional sleep after the marker wait.
	Settle time.Duration
}

// Renderer navigates to a URL in a real browser and returns the rendered
// HTML once the page has settled.
type Renderer interface {
	Render(ctx context.Context, rawURL string, wait RenderWait) (string, error)
}

// Browser implements Renderer on a single headless Chromium page, reused
// serially across all collectors.
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     *config.BrowserConfig
	logger  *slog.Logger
}

// NewBrowser launches a headless Chromium instance and opens one page with
// stealth patches applied.
func NewBrowser(cfg *config.BrowserConfig, ua string, logger *slog.Logger) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("window-size", cfg.WindowSize).
		Set("disable-blink-features", "AutomationControlled")

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("stealth page: %w", err)
	}

	if ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			logger.Warn("failed to set user agent", "error", err)
		}
	}

	logger.Info("browser ready", "headless", cfg.Headless)

	return &Browser{
		browser: browser,
		page:    page,
		cfg:     cfg,
		logger:  logger.With("component", "browser"),
	}, nil
}

// Render navigates to rawURL, waits for the configured marker, and returns
// the rendered HTML.
func (b *Browser) Render(ctx context.Context, rawURL string, wait RenderWait) (string, error) {
	if b.page == nil {
		return "", types.ErrBrowserClosed
	}

	page := b.page.Context(ctx)

	if err := page.Timeout(b.cfg.NavTimeout).Navigate(rawURL); err != nil {
		return "", &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}
	if err := page.Timeout(b.cfg.NavTimeout).WaitLoad(); err != nil {
		b.logger.Warn("page load timeout, continuing", "url", rawURL, "error", err)
	}

	if wait.Selector != "" {
		if _, err := page.Timeout(wait.Timeout).Element(wait.Selector); err != nil {
			// Marker never appeared; SPA sources may still render late.
			b.logger.Debug("marker wait timed out", "url", rawURL, "selector", wait.Selector)
			if wait.FallbackSleep > 0 {
				time.Sleep(wait.FallbackSleep)
			}
		}
	}
	if wait.Settle > 0 {
		time.Sleep(wait.Settle)
	}

	html, err := page.HTML()
	if err != nil {
		return "", &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}

	b.logger.Debug("render complete", "url", rawURL, "size", len(html))
	return html, nil
}

// ResetSession clears browser cookies so state from one source cannot leak
// into the next.
func (b *Browser) ResetSession() error {
	if b.page == nil {
		return types.ErrBrowserClosed
	}
	return proto.NetworkClearBrowserCookies{}.Call(b.page)
}

// Close shuts down the browser and releases resources.
func (b *Browser) Close() error {
	b.page = nil
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}
