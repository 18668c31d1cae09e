package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// It is used for front pages that build their headline lists in JavaScript.
type BrowserFetcher struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      *config.FetcherConfig
	logger   *slog.Logger
}

// NewBrowserFetcher launches a headless Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox")
	if cfg.Fetcher.BrowserBin != "" {
		l = l.Bin(cfg.Fetcher.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf := &BrowserFetcher{
		browser:  browser,
		launcher: l,
		cfg:      &cfg.Fetcher,
		logger:   logger.With("component", "browser_fetcher"),
	}
	bf.logger.Info("browser fetcher ready")
	return bf, nil
}

// Fetch navigates to a URL and returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	start := time.Now()

	timeout := bf.cfg.RequestTimeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	page, err := bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, &types.FetchError{Source: req.Source, URL: req.URLString(), Err: fmt.Errorf("open page: %w", err)}
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx).Timeout(timeout)

	if len(bf.cfg.UserAgents) > 0 {
		ua := &proto.NetworkSetUserAgentOverride{UserAgent: bf.cfg.UserAgents[0]}
		if err := page.SetUserAgent(ua); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if err := page.Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{Source: req.Source, URL: req.URLString(), Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		bf.logger.Warn("page load wait failed, continuing", "url", req.URLString(), "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{Source: req.Source, URL: req.URLString(), Err: err}
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	// Rod does not expose the document status code without network hooks.
	resp := types.NewBrowserResponse(req, 200, []byte(html), finalURL, duration)

	bf.logger.Debug("browser fetch complete",
		"source", req.Source,
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return resp, nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	err := bf.browser.Close()
	bf.launcher.Cleanup()
	return err
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
