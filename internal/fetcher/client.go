package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/types"
)

// Client is the retrying front door for page retrieval. It applies the
// politeness delay before each attempt, retries transport failures
// with exponential backoff, and lazily creates a single shared browser
// for rendered-mode requests, silently degrading to plain HTTP when
// the browser cannot be launched.
type Client struct {
	http    *HTTPFetcher
	cfg     *config.Config
	logger  *slog.Logger
	limiter *rate.Limiter

	browserOnce sync.Once
	browser     *BrowserFetcher
	browserErr  error
}

// NewClient creates a Client with the HTTP fetcher ready and the
// browser deferred until first rendered-mode request.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	httpFetcher, err := NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create http fetcher: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Engine.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Engine.Delay), 1)
	}

	return &Client{
		http:    httpFetcher,
		cfg:     cfg,
		logger:  logger.With("component", "fetch_client"),
		limiter: limiter,
	}, nil
}

// Fetch retrieves a URL in the given mode with bounded retries.
// Retries use exponential backoff: retry_delay doubles per attempt.
func (c *Client) Fetch(ctx context.Context, rawURL string, mode types.FetchMode) (*types.Response, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, err
	}
	req.Mode = mode
	req.MaxRetries = c.cfg.Engine.MaxRetries

	var lastErr error
	for attempt := 0; attempt < req.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.Engine.RetryDelay << (attempt - 1)
			c.logger.Warn("fetch retry",
				"url", rawURL,
				"attempt", attempt+1,
				"backoff", backoff,
				"error", lastErr,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.fetcherFor(req).Fetch(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var fe *types.FetchError
		if errors.As(err, &fe) && !fe.Retryable {
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}

	c.logger.Error("fetch failed", "url", rawURL, "error", lastErr)
	return nil, fmt.Errorf("%w: %v", types.ErrMaxRetries, lastErr)
}

// Page fetches a URL and returns its parsed document. Callers treat a
// nil document as "no further data here": fetch and parse failures are
// logged, never propagated.
func (c *Client) Page(ctx context.Context, rawURL string, mode types.FetchMode) *types.Response {
	resp, err := c.Fetch(ctx, rawURL, mode)
	if err != nil {
		c.logger.Warn("page unavailable", "url", rawURL, "error", err)
		return nil
	}
	return resp
}

// fetcherFor selects the transport for a request, degrading rendered
// mode to plain HTTP when the browser is unavailable.
func (c *Client) fetcherFor(req *types.Request) Fetcher {
	if req.Mode != types.ModeRendered {
		return c.http
	}

	c.browserOnce.Do(func() {
		c.browser, c.browserErr = NewBrowserFetcher(c.cfg, c.logger)
		if c.browserErr != nil {
			c.logger.Warn("browser unavailable, falling back to plain HTTP",
				"error", c.browserErr)
		}
	})

	if c.browserErr != nil || c.browser == nil {
		return c.http
	}
	return c.browser
}

// Close tears down the HTTP client and the browser if one was started.
func (c *Client) Close() error {
	var firstErr error
	if err := c.http.Close(); err != nil {
		firstErr = err
	}
	if c.browser != nil {
		if err := c.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
