package source

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/mmcdole/gofeed"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/fetcher"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// RSSSource reads headlines from an RSS or Atom feed.
type RSSSource struct {
	cfg     config.SourceConfig
	fetcher fetcher.Fetcher
	parser  *gofeed.Parser
	logger  *slog.Logger
}

// NewRSSSource creates a feed source from its configuration.
func NewRSSSource(cfg config.SourceConfig, f fetcher.Fetcher, logger *slog.Logger) *RSSSource {
	return &RSSSource{
		cfg:     cfg,
		fetcher: f,
		parser:  gofeed.NewParser(),
		logger:  logger.With("component", "rss_source", "source", cfg.Name),
	}
}

func (s *RSSSource) Name() string { return s.cfg.Name }

func (s *RSSSource) Kind() string { return "rss" }

// Fetch downloads and parses the feed. Items without a title are skipped.
func (s *RSSSource) Fetch(ctx context.Context, limit int) ([]types.Headline, error) {
	req, err := types.NewRequest(s.cfg.URL)
	if err != nil {
		return nil, err
	}
	req.Source = s.cfg.Name
	req.Headers.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	feed, err := s.parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.ParseError{Source: s.cfg.Name, URL: s.cfg.URL, Err: err}
	}

	out := make([]types.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(out) >= limit {
			break
		}
		if item.Title == "" {
			continue
		}

		h := types.NewHeadline(s.cfg.Name, item.Title, item.Link)
		h.Summary = item.Description
		switch {
		case item.PublishedParsed != nil:
			h.SetPublished(*item.PublishedParsed)
		case item.UpdatedParsed != nil:
			h.SetPublished(*item.UpdatedParsed)
		}
		out = append(out, h)
	}

	s.logger.Info("feed parsed", "title", feed.Title, "items", len(feed.Items), "headlines", len(out))
	return out, nil
}
