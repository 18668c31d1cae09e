package source

import (
	"context"
	"log/slog"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/fetcher"
	"github.com/IshaanNene/newsgoat/internal/parser"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// defaultScrapeLimit caps a scrape when the caller passes no limit.
const defaultScrapeLimit = 20

// ScrapeSource extracts headlines from an HTML front page.
type ScrapeSource struct {
	cfg     config.SourceConfig
	fetcher fetcher.Fetcher
	parser  parser.Parser
	logger  *slog.Logger
}

// NewScrapeSource creates a scrape source from its configuration.
func NewScrapeSource(cfg config.SourceConfig, f fetcher.Fetcher, p parser.Parser, logger *slog.Logger) *ScrapeSource {
	return &ScrapeSource{
		cfg:     cfg,
		fetcher: f,
		parser:  p,
		logger:  logger.With("component", "scrape_source", "source", cfg.Name),
	}
}

func (s *ScrapeSource) Name() string { return s.cfg.Name }

func (s *ScrapeSource) Kind() string { return "scrape" }

// Fetch downloads the page and applies the source's rules.
func (s *ScrapeSource) Fetch(ctx context.Context, limit int) ([]types.Headline, error) {
	if limit <= 0 {
		limit = defaultScrapeLimit
	}

	req, err := types.NewRequest(s.cfg.URL)
	if err != nil {
		return nil, err
	}
	req.Source = s.cfg.Name
	if s.cfg.Render == types.RenderBrowser {
		req.Render = types.RenderBrowser
	}

	s.logger.Info("scraping front page", "url", s.cfg.URL, "render", req.Render)

	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, &types.FetchError{Source: s.cfg.Name, URL: s.cfg.URL, Err: types.ErrEmptyResponse}
	}

	headlines, err := s.parser.Parse(resp, s.cfg.Rules, s.cfg.Name, limit)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scraped headlines", "count", len(headlines))
	return headlines, nil
}
