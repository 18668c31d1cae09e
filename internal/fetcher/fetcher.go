package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// Fetcher is the interface for all request fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// Router sends each request to the HTTP or browser fetcher according to
// its Render mode. The browser is launched on the first browser request.
type Router struct {
	http       Fetcher
	cfg        *config.Config
	logger     *slog.Logger
	newBrowser func() (Fetcher, error)

	mu      sync.Mutex
	browser Fetcher
}

// NewRouter creates a Router backed by a new HTTPFetcher.
func NewRouter(cfg *config.Config, logger *slog.Logger) (*Router, error) {
	httpFetcher, err := NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	r := &Router{
		http:   httpFetcher,
		cfg:    cfg,
		logger: logger.With("component", "fetch_router"),
	}
	r.newBrowser = func() (Fetcher, error) { return NewBrowserFetcher(cfg, logger) }
	return r, nil
}

// Fetch implements Fetcher.
func (r *Router) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if req.Render != types.RenderBrowser {
		return r.http.Fetch(ctx, req)
	}

	browser, err := r.browserFetcher()
	if err != nil {
		return nil, &types.FetchError{Source: req.Source, URL: req.URLString(), Err: err}
	}
	return browser.Fetch(ctx, req)
}

func (r *Router) browserFetcher() (Fetcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}
	b, err := r.newBrowser()
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	r.browser = b
	return b, nil
}

// Close releases both fetchers.
func (r *Router) Close() error {
	err := r.http.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		if berr := r.browser.Close(); berr != nil && err == nil {
			err = berr
		}
		r.browser = nil
	}
	return err
}

// Type returns the fetcher type identifier.
func (r *Router) Type() string { return "router" }
