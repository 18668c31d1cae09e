package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.NewsAPI.PageSize < 1 || cfg.NewsAPI.PageSize > 100 {
		return fmt.Errorf("newsapi.page_size must be 1-100, got %d", cfg.NewsAPI.PageSize)
	}
	if cfg.NewsAPI.MaxPages < 1 {
		return fmt.Errorf("newsapi.max_pages must be >= 1, got %d", cfg.NewsAPI.MaxPages)
	}
	if err := ValidateURL(cfg.NewsAPI.BaseURL); err != nil {
		return fmt.Errorf("newsapi.base_url: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if err := validateSource(src); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		name := strings.ToLower(src.Name)
		if seen[name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name)
		}
		seen[name] = true
	}

	switch cfg.Storage.Type {
	case "json", "sqlite":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s storage", cfg.Storage.Type)
		}
	case "mongodb":
		if cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
		}
	default:
		return fmt.Errorf("storage.type %q is not supported (valid: json, sqlite, mongodb)", cfg.Storage.Type)
	}
	if cfg.Storage.Timeout <= 0 {
		return fmt.Errorf("storage.timeout must be > 0")
	}

	switch cfg.Export.Format {
	case "csv", "xlsx", "excel", "jsonl":
	default:
		return fmt.Errorf("export.format %q is not supported (valid: csv, xlsx, jsonl)", cfg.Export.Format)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

func validateSource(src SourceConfig) error {
	if src.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch strings.ToLower(src.Name) {
	case "all", "newsapi", "rss":
		return fmt.Errorf("name %q is reserved", src.Name)
	}
	if strings.Contains(src.Name, ",") {
		return fmt.Errorf("name %q must not contain a comma", src.Name)
	}
	if err := ValidateURL(src.URL); err != nil {
		return err
	}
	switch src.Kind {
	case "rss":
	case "scrape", "":
		if src.Rules.Item == "" {
			return fmt.Errorf("rules.item is required for scrape source %q", src.Name)
		}
		if src.Rules.Type != "" && src.Rules.Type != "css" && src.Rules.Type != "xpath" {
			return fmt.Errorf("rules.type must be 'css' or 'xpath', got %q", src.Rules.Type)
		}
	default:
		return fmt.Errorf("kind must be 'scrape' or 'rss', got %q", src.Kind)
	}
	if src.Render != "" && src.Render != "http" && src.Render != "browser" {
		return fmt.Errorf("render must be 'http' or 'browser', got %q", src.Render)
	}
	return nil
}

// ValidateURL checks if a URL string is usable as a fetch target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
