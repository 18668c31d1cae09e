package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/storage"
)

var (
	cfgFile     string
	verbose     bool
	storeType   string
	storePath   string
	newsAPIKey  string
	newsAPIPage int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "newsgoat",
		Short: "NewsGoat: news headline aggregator",
		Long: `NewsGoat collects headlines from NewsAPI, RSS feeds, and scraped front
pages into a local dataset you can browse, filter, deduplicate, and export.

Sources:
  • NewsAPI top headlines (set NEWSAPI_KEY)
  • Built-in BBC and CNN front-page scrapers
  • Your own scrape and RSS sources from newsgoat.yaml

Storage: SQLite (default), JSON file, or MongoDB.
Export:  CSV, XLSX, JSONL.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&storeType, "store", "", "storage backend: sqlite, json, mongodb")
	rootCmd.PersistentFlags().StringVar(&storePath, "db", "", "storage file path (sqlite or json)")

	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(dedupeCmd())
	rootCmd.AddCommand(listSourcesCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads, overrides, and validates configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup loads configuration and builds the logger every command uses.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, setupLogger(cfg.Logging), nil
}

// openStore opens the configured storage backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	logger.Debug("storage opened", "backend", store.Name(), "path", cfg.Storage.Path)
	return store, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down...", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "NewsGoat %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.NewsAPI.APIKey != "" {
				cfg.NewsAPI.APIKey = maskSecret(cfg.NewsAPI.APIKey)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if storeType != "" {
		t := strings.ToLower(storeType)
		// Keep the file name in step with the backend unless --db names one.
		if storePath == "" && cfg.Storage.Path == config.DefaultStoragePath(cfg.Storage.Type) {
			if p := config.DefaultStoragePath(t); p != "" {
				cfg.Storage.Path = p
			}
		}
		cfg.Storage.Type = t
	}
	if storePath != "" {
		cfg.Storage.Path = storePath
	}
	if newsAPIKey != "" {
		cfg.NewsAPI.APIKey = newsAPIKey
	}
	if newsAPIPage > 0 {
		cfg.NewsAPI.MaxPages = newsAPIPage
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
