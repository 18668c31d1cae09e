package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/fetcher"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// NewsAPIName is the catalog name of the NewsAPI source.
const NewsAPIName = "newsapi"

// removedTitle marks articles NewsAPI has withdrawn.
const removedTitle = "[Removed]"

// NewsAPISource queries the NewsAPI top-headlines endpoint.
type NewsAPISource struct {
	cfg     config.NewsAPIConfig
	query   string
	sources string
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// NewNewsAPISource creates a NewsAPI source. It fails with ErrMissingAPIKey
// when no key is configured.
func NewNewsAPISource(cfg config.NewsAPIConfig, f fetcher.Fetcher, logger *slog.Logger) (*NewsAPISource, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, types.ErrMissingAPIKey
	}
	return &NewsAPISource{
		cfg:     cfg,
		sources: cfg.Sources,
		fetcher: f,
		logger:  logger.With("component", "newsapi_source"),
	}, nil
}

// WithQuery sets the q parameter.
func (s *NewsAPISource) WithQuery(q string) *NewsAPISource {
	s.query = strings.TrimSpace(q)
	return s
}

// WithSources sets the comma-separated NewsAPI source ids. When empty the
// configured language is used instead.
func (s *NewsAPISource) WithSources(ids string) *NewsAPISource {
	s.sources = strings.TrimSpace(ids)
	return s
}

func (s *NewsAPISource) Name() string { return NewsAPIName }

func (s *NewsAPISource) Kind() string { return "newsapi" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Fetch pages through top-headlines until max_pages, the reported total,
// or limit is reached.
func (s *NewsAPISource) Fetch(ctx context.Context, limit int) ([]types.Headline, error) {
	pageSize := s.cfg.PageSize
	if limit > 0 {
		pageSize = min(limit, 100)
	}
	maxPages := max(s.cfg.MaxPages, 1)

	var out []types.Headline
	for page := 1; page <= maxPages; page++ {
		body, err := s.fetchPage(ctx, page, pageSize)
		if err != nil {
			return out, err
		}

		for _, a := range body.Articles {
			if limit > 0 && len(out) >= limit {
				break
			}
			if a.Title == "" || a.Title == removedTitle {
				continue
			}
			out = append(out, a.toHeadline())
		}

		s.logger.Debug("newsapi page fetched",
			"page", page,
			"articles", len(body.Articles),
			"total_results", body.TotalResults,
		)

		if limit > 0 && len(out) >= limit {
			break
		}
		if len(body.Articles) == 0 || page*pageSize >= body.TotalResults {
			break
		}
	}

	s.logger.Info("newsapi fetched", "count", len(out))
	return out, nil
}

func (s *NewsAPISource) endpoint(page, pageSize int) string {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))
	if s.query != "" {
		params.Set("q", s.query)
	}
	if s.sources != "" {
		params.Set("sources", s.sources)
	} else if s.cfg.Language != "" {
		params.Set("language", s.cfg.Language)
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/v2/top-headlines?" + params.Encode()
}

func (s *NewsAPISource) fetchPage(ctx context.Context, page, pageSize int) (*newsAPIResponse, error) {
	endpoint := s.endpoint(page, pageSize)
	req, err := types.NewRequest(endpoint)
	if err != nil {
		return nil, err
	}
	req.Source = NewsAPIName
	req.Headers.Set("Authorization", s.cfg.APIKey)
	req.Headers.Set("Accept", "application/json")

	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	var body newsAPIResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, &types.ParseError{Source: NewsAPIName, URL: endpoint, Err: err}
	}
	if body.Status == "error" {
		return nil, &types.FetchError{
			Source:     NewsAPIName,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", body.Code, body.Message),
		}
	}
	return &body, nil
}

func (a newsAPIArticle) toHeadline() types.Headline {
	name := a.Source.Name
	if name == "" {
		name = "NewsAPI"
	}
	h := types.NewHeadline(name, a.Title, a.URL)
	h.Summary = a.Description
	if t, ok := types.ParseTimestamp(a.PublishedAt); ok {
		h.SetPublished(t)
	}
	return h
}
