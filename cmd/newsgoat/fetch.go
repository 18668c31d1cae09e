package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/newsgoat/internal/engine"
	"github.com/IshaanNene/newsgoat/internal/fetcher"
	"github.com/IshaanNene/newsgoat/internal/observability"
	"github.com/IshaanNene/newsgoat/internal/parser"
	"github.com/IshaanNene/newsgoat/internal/pipeline"
	"github.com/IshaanNene/newsgoat/internal/source"
)

var (
	fetchSource  string
	fetchKeyword string
	fetchLimit   int
)

// fetchCmd creates the "fetch" subcommand.
func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch headlines and merge them into the store",
		Long: `Fetch headlines from the selected sources, clean and deduplicate them,
and merge them into the stored dataset.

--source accepts "all", "newsapi", "rss", a built-in or configured source
name, or a comma-separated list. With a NewsAPI key, "all" queries NewsAPI
first and falls back to the built-in scrapers when it returns nothing.
Other names are passed to NewsAPI as source ids.`,
		Args: cobra.NoArgs,
		RunE: runFetch,
	}

	cmd.Flags().StringVarP(&fetchSource, "source", "s", source.AllSources, "sources to fetch")
	cmd.Flags().StringVarP(&fetchKeyword, "keyword", "k", "", "keyword for the NewsAPI q parameter")
	cmd.Flags().IntVarP(&fetchLimit, "limit", "l", 50, "maximum headlines per source")
	cmd.Flags().IntVar(&newsAPIPage, "pages", 0, "NewsAPI pages to request (default from config)")
	cmd.Flags().StringVar(&newsAPIKey, "newsapi-key", "", "NewsAPI key (or set NEWSAPI_KEY)")

	return cmd
}

// runFetch executes the fetch command.
func runFetch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	router, err := fetcher.NewRouter(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer router.Close()

	catalog := source.NewCatalog(cfg, router, parser.NewCompositeParser(logger), logger)
	sel, err := catalog.Select(fetchSource, source.Query{Keyword: fetchKeyword})
	if err != nil {
		return fmt.Errorf("select sources: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	existing, err := store.Load(ctx)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics(logger)
	eng := engine.New(logger, pipeline.Default(logger), metrics)

	start := time.Now()
	res, err := eng.Run(ctx, sel, existing, engine.Options{
		Limit: fetchLimit,
		ByURL: cfg.Dedup.ByURL,
	})
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	for _, serr := range res.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", serr)
	}

	if err := store.Save(ctx, res.Records); err != nil {
		return err
	}
	recordSaved(metrics, res)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("metrics textfile not written", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n✅ Fetch complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "   Sources:    %d queried, %d failed\n", eng.Stats().SourcesRun.Load(), len(res.Errors))
	if res.FallbackUsed {
		fmt.Fprintf(out, "   Fallback:   primary sources were empty, used built-in scrapers\n")
	}
	fmt.Fprintf(out, "   Headlines:  %d fetched, %d dropped, %d duplicates\n", res.Fetched, res.Dropped, res.Duplicates)
	fmt.Fprintf(out, "   Stored:     %d new, %d total (%s)\n", res.Added, len(res.Records), store.Name())

	return nil
}

// recordSaved counts the headlines a saved run added to the store.
func recordSaved(m *observability.Metrics, res *engine.Result) {
	m.HeadlinesStored.Add(int64(res.Added))
}
