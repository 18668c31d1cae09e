package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for newsgoat.
type Config struct {
	Fetcher FetcherConfig  `mapstructure:"fetcher" yaml:"fetcher"`
	NewsAPI NewsAPIConfig  `mapstructure:"newsapi" yaml:"newsapi"`
	Sources []SourceConfig `mapstructure:"sources" yaml:"sources"`
	Dedup   DedupConfig    `mapstructure:"dedup"   yaml:"dedup"`
	Storage StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Export  ExportConfig   `mapstructure:"export"  yaml:"export"`
	Logging LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// FetcherConfig controls the HTTP and browser fetchers.
type FetcherConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	BrowserBin      string        `mapstructure:"browser_bin"       yaml:"browser_bin"`
}

// NewsAPIConfig controls the NewsAPI source.
type NewsAPIConfig struct {
	APIKey   string `mapstructure:"api_key"   yaml:"api_key"`
	BaseURL  string `mapstructure:"base_url"  yaml:"base_url"`
	Sources  string `mapstructure:"sources"   yaml:"sources"`
	Language string `mapstructure:"language"  yaml:"language"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`
	MaxPages int    `mapstructure:"max_pages" yaml:"max_pages"`
}

// SourceConfig describes a scrape or feed source.
type SourceConfig struct {
	Name     string     `mapstructure:"name"     yaml:"name"`
	Kind     string     `mapstructure:"kind"     yaml:"kind"` // scrape, rss
	URL      string     `mapstructure:"url"      yaml:"url"`
	Render   string     `mapstructure:"render"   yaml:"render"` // http, browser
	Disabled bool       `mapstructure:"disabled" yaml:"disabled,omitempty"`
	Rules    ScrapeRule `mapstructure:"rules"    yaml:"rules"`
}

// ScrapeRule defines how headlines are located on a page.
//
// Item selects one node per headline. Title, Link, Date, and Summary are
// evaluated relative to that node; an empty Title uses the item's own text
// and an empty Link uses the item itself or its nearest enclosing anchor.
type ScrapeRule struct {
	Type          string `mapstructure:"type"           yaml:"type"` // css, xpath
	Item          string `mapstructure:"item"           yaml:"item"`
	Title         string `mapstructure:"title"          yaml:"title,omitempty"`
	Link          string `mapstructure:"link"           yaml:"link,omitempty"`
	LinkAttribute string `mapstructure:"link_attribute" yaml:"link_attribute,omitempty"`
	Date          string `mapstructure:"date"           yaml:"date,omitempty"`
	DateAttribute string `mapstructure:"date_attribute" yaml:"date_attribute,omitempty"`
	Summary       string `mapstructure:"summary"        yaml:"summary,omitempty"`
}

// DedupConfig controls deduplication.
type DedupConfig struct {
	ByURL bool `mapstructure:"by_url" yaml:"by_url"`
}

// StorageConfig controls persistence.
type StorageConfig struct {
	Type       string        `mapstructure:"type"        yaml:"type"` // json, sqlite, mongodb
	Path       string        `mapstructure:"path"        yaml:"path"`
	MongoURI   string        `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	Database   string        `mapstructure:"database"    yaml:"database"`
	Collection string        `mapstructure:"collection"  yaml:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"     yaml:"timeout"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Format    string `mapstructure:"format"     yaml:"format"`
	Path      string `mapstructure:"path"       yaml:"path"`
	SheetName string `mapstructure:"sheet_name" yaml:"sheet_name"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the run metrics textfile.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			RequestTimeout:  15 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    16,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		NewsAPI: NewsAPIConfig{
			BaseURL:  "https://newsapi.org",
			Language: "en",
			PageSize: 20,
			MaxPages: 1,
		},
		Storage: StorageConfig{
			Type:       "sqlite",
			Path:       DefaultStoragePath("sqlite"),
			Database:   "newsgoat",
			Collection: "headlines",
			Timeout:    10 * time.Second,
		},
		Export: ExportConfig{
			Format:    "csv",
			Path:      "export.csv",
			SheetName: "headlines",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultStoragePath returns the default file for a storage type, or ""
// for backends that do not use a file.
func DefaultStoragePath(storageType string) string {
	switch storageType {
	case "sqlite", "":
		return "news.db"
	case "json":
		return "news.json"
	default:
		return ""
	}
}

// EnabledSources returns the configured sources that are not disabled.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}
