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

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// Rendered mode exists for listing and detail pages whose product grids
// are populated client-side.
type BrowserFetcher struct {
	browser    *rod.Browser
	cfg        *config.Config
	settleWait time.Duration
	logger     *slog.Logger
}

// NewBrowserFetcher launches a headless Chromium instance and connects
// to it. Callers should treat a launch failure as a signal to degrade
// to plain HTTP fetching.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf := &BrowserFetcher{
		browser:    browser,
		cfg:        cfg,
		settleWait: cfg.Engine.SettleWait,
		logger:     logger.With("component", "browser_fetcher"),
	}

	bf.logger.Info("browser fetcher ready", "settle_wait", bf.settleWait)
	return bf, nil
}

// Fetch navigates to a URL, waits for dynamic content to settle, and
// returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	start := time.Now()

	page, err := stealth.Page(bf.browser)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: fmt.Errorf("stealth page: %w", err), Retryable: true}
	}
	defer page.Close()

	if ua := req.Headers.Get("User-Agent"); ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	timeout := bf.cfg.Engine.RequestTimeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	page = page.Context(ctx)
	if err := page.Timeout(timeout).Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		bf.logger.Warn("page load timeout, continuing", "url", req.URLString(), "error", err)
	}

	// Fixed settle wait for late-rendered product grids.
	select {
	case <-time.After(bf.settleWait):
	case <-ctx.Done():
		return nil, &types.FetchError{URL: req.URLString(), Err: ctx.Err(), Retryable: false}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	resp := types.NewRenderedResponse(req, []byte(html), finalURL, duration)

	bf.logger.Debug("rendered fetch complete",
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return resp, nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
