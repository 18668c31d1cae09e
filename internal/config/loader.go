package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied by the caller on the returned Config.
func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("NEWSGOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// NEWSAPI_KEY is the variable name the NewsAPI docs use.
	if err := v.BindEnv("newsapi.api_key", "NEWSGOAT_NEWSAPI_API_KEY", "NEWSAPI_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("newsgoat")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".newsgoat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.user_agents", cfg.Fetcher.UserAgents)
	v.SetDefault("fetcher.browser_bin", cfg.Fetcher.BrowserBin)

	v.SetDefault("newsapi.base_url", cfg.NewsAPI.BaseURL)
	v.SetDefault("newsapi.sources", cfg.NewsAPI.Sources)
	v.SetDefault("newsapi.language", cfg.NewsAPI.Language)
	v.SetDefault("newsapi.page_size", cfg.NewsAPI.PageSize)
	v.SetDefault("newsapi.max_pages", cfg.NewsAPI.MaxPages)

	v.SetDefault("dedup.by_url", cfg.Dedup.ByURL)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.database", cfg.Storage.Database)
	v.SetDefault("storage.collection", cfg.Storage.Collection)
	v.SetDefault("storage.timeout", cfg.Storage.Timeout)

	v.SetDefault("export.format", cfg.Export.Format)
	v.SetDefault("export.path", cfg.Export.Path)
	v.SetDefault("export.sheet_name", cfg.Export.SheetName)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.textfile", cfg.Metrics.Textfile)
}
