package source

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/fetcher"
	"github.com/IshaanNene/newsgoat/internal/parser"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// AllSources selects every available source.
const AllSources = "all"

// RSSGroup selects every configured feed source.
const RSSGroup = "rss"

// Origins reported by Catalog.Entries.
const (
	OriginBuiltin = "builtin"
	OriginConfig  = "config"
	OriginAPI     = "api"
)

// BuiltinSources returns the front pages newsgoat scrapes out of the box.
func BuiltinSources() []config.SourceConfig {
	return []config.SourceConfig{
		{
			Name:   "bbc",
			Kind:   "scrape",
			URL:    "https://www.bbc.com",
			Render: types.RenderHTTP,
			Rules:  config.ScrapeRule{Type: "css", Item: "a[href] h3"},
		},
		{
			Name:   "cnn",
			Kind:   "scrape",
			URL:    "https://edition.cnn.com",
			Render: types.RenderHTTP,
			Rules:  config.ScrapeRule{Type: "css", Item: "h3 a, span.cd__headline a, a[href].container__link"},
		},
	}
}

// Entry describes one selectable source.
type Entry struct {
	Name     string
	Kind     string
	URL      string
	Origin   string
	Disabled bool
}

// Query carries per-run options for sources that accept them.
type Query struct {
	Keyword string
}

// Catalog resolves source names to Sources.
type Catalog struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	parser  parser.Parser
	logger  *slog.Logger

	builtins   []config.SourceConfig
	configured []config.SourceConfig
}

// NewCatalog creates a catalog from the built-in and configured sources.
// A configured source with a built-in name replaces the built-in.
func NewCatalog(cfg *config.Config, f fetcher.Fetcher, p parser.Parser, logger *slog.Logger) *Catalog {
	c := &Catalog{
		cfg:     cfg,
		fetcher: f,
		parser:  p,
		logger:  logger.With("component", "catalog"),
	}

	overridden := make(map[string]bool)
	for _, sc := range cfg.Sources {
		overridden[strings.ToLower(sc.Name)] = true
		c.configured = append(c.configured, sc)
	}
	for _, b := range BuiltinSources() {
		if !overridden[b.Name] {
			c.builtins = append(c.builtins, b)
		}
	}
	return c
}

// HasNewsAPI reports whether a NewsAPI key is configured.
func (c *Catalog) HasNewsAPI() bool {
	return strings.TrimSpace(c.cfg.NewsAPI.APIKey) != ""
}

// Entries lists every source the catalog knows about.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, b := range c.builtins {
		out = append(out, Entry{Name: b.Name, Kind: b.Kind, URL: b.URL, Origin: OriginBuiltin})
	}
	configured := make([]Entry, 0, len(c.configured))
	for _, sc := range c.configured {
		configured = append(configured, Entry{
			Name:     sc.Name,
			Kind:     kindOf(sc),
			URL:      sc.URL,
			Origin:   OriginConfig,
			Disabled: sc.Disabled,
		})
	}
	sort.SliceStable(configured, func(i, j int) bool { return configured[i].Name < configured[j].Name })
	out = append(out, configured...)
	out = append(out, Entry{
		Name:     NewsAPIName,
		Kind:     "newsapi",
		URL:      c.cfg.NewsAPI.BaseURL,
		Origin:   OriginAPI,
		Disabled: !c.HasNewsAPI(),
	})
	return out
}

// Select resolves a comma-separated list of names.
//
// "all" queries NewsAPI when a key is configured and falls back to the
// built-in scrapers when it returns nothing; without a key the built-ins
// run directly. Configured sources always run. "rss" selects every
// configured feed. Names the catalog does not know are passed to NewsAPI
// as source ids when a key is configured.
func (c *Catalog) Select(list string, q Query) (Selection, error) {
	names := splitNames(list)
	if len(names) == 0 {
		names = []string{AllSources}
	}

	var (
		sel        Selection
		seen       = make(map[string]bool)
		useNewsAPI bool
		fallback   bool
		apiIDs     []string
	)

	addPrimary := func(sc config.SourceConfig) {
		key := strings.ToLower(sc.Name)
		if seen[key] {
			return
		}
		seen[key] = true
		sel.Primary = append(sel.Primary, c.build(sc))
	}

	for _, name := range names {
		switch {
		case name == AllSources:
			if c.HasNewsAPI() {
				useNewsAPI = true
				fallback = true
			} else {
				for _, b := range c.builtins {
					addPrimary(b)
				}
			}
			for _, sc := range c.cfg.EnabledSources() {
				addPrimary(sc)
			}

		case name == NewsAPIName:
			if !c.HasNewsAPI() {
				return Selection{}, types.ErrMissingAPIKey
			}
			useNewsAPI = true

		case name == RSSGroup:
			for _, sc := range c.cfg.EnabledSources() {
				if kindOf(sc) == "rss" {
					addPrimary(sc)
				}
			}

		default:
			if sc, ok := c.lookup(name); ok {
				addPrimary(sc)
				continue
			}
			if !c.HasNewsAPI() {
				return Selection{}, fmt.Errorf("%w: %q", types.ErrUnknownSource, name)
			}
			useNewsAPI = true
			apiIDs = append(apiIDs, name)
		}
	}

	if useNewsAPI {
		api, err := NewNewsAPISource(c.cfg.NewsAPI, c.fetcher, c.logger)
		if err != nil {
			return Selection{}, err
		}
		api.WithQuery(q.Keyword)
		if len(apiIDs) > 0 {
			api.WithSources(strings.Join(apiIDs, ","))
		}
		sel.Primary = append([]Source{api}, sel.Primary...)
	}
	if fallback {
		for _, b := range c.builtins {
			if !seen[b.Name] {
				sel.Fallback = append(sel.Fallback, c.build(b))
			}
		}
	}

	if sel.Empty() {
		return Selection{}, types.ErrNoSources
	}
	return sel, nil
}

func (c *Catalog) lookup(name string) (config.SourceConfig, bool) {
	for _, sc := range c.configured {
		if strings.EqualFold(sc.Name, name) {
			return sc, true
		}
	}
	for _, b := range c.builtins {
		if b.Name == name {
			return b, true
		}
	}
	return config.SourceConfig{}, false
}

func (c *Catalog) build(sc config.SourceConfig) Source {
	if kindOf(sc) == "rss" {
		return NewRSSSource(sc, c.fetcher, c.logger)
	}
	return NewScrapeSource(sc, c.fetcher, c.parser, c.logger)
}

func kindOf(sc config.SourceConfig) string {
	if sc.Kind == "" {
		return "scrape"
	}
	return sc.Kind
}

func splitNames(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
