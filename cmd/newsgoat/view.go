package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/IshaanNene/newsgoat/internal/filter"
	"github.com/IshaanNene/newsgoat/internal/types"
)

var (
	viewSource  string
	viewKeyword string
	viewStart   string
	viewEnd     string
	viewLimit   int
)

// defaultWidth is used when stdout is not a terminal and COLUMNS is unset.
const defaultWidth = 100

// viewCmd creates the "view" subcommand.
func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show stored headlines",
		Long: `Show stored headlines, newest first, optionally filtered by source,
keyword, and publication date. Dates accept YYYY-MM-DD or RFC3339; an --end
date without a time includes the whole day. Undated headlines are listed
after dated ones.`,
		Args: cobra.NoArgs,
		RunE: runView,
	}

	cmd.Flags().StringVarP(&viewSource, "source", "s", "", "source name contains")
	cmd.Flags().StringVarP(&viewKeyword, "keyword", "k", "", "keyword in title, summary, or URL")
	cmd.Flags().StringVar(&viewStart, "start", "", "earliest publication date")
	cmd.Flags().StringVar(&viewEnd, "end", "", "latest publication date")
	cmd.Flags().IntVarP(&viewLimit, "limit", "l", 50, "maximum headlines to show (0 = all)")

	return cmd
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	criteria, err := buildCriteria(viewSource, viewKeyword, viewStart, viewEnd, viewLimit)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Load(ctx)
	if err != nil {
		return err
	}

	matches := newestFirst(records, criteria)
	if len(matches) == 0 {
		logger.Info("no headlines found", "stored", len(records))
		return nil
	}

	printHeadlines(cmd.OutOrStdout(), matches, terminalWidth())
	return nil
}

// buildCriteria turns filter flags into filter criteria.
func buildCriteria(src, keyword, start, end string, limit int) (filter.Criteria, error) {
	startBound, err := filter.ParseBound(start, false)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("--start: %w", err)
	}
	endBound, err := filter.ParseBound(end, true)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("--end: %w", err)
	}
	if startBound != nil && endBound != nil && endBound.Before(*startBound) {
		return filter.Criteria{}, fmt.Errorf("--end %s is before --start %s", end, start)
	}
	return filter.Criteria{
		Source:  src,
		Keyword: keyword,
		Start:   startBound,
		End:     endBound,
		Limit:   limit,
	}, nil
}

// newestFirst filters records and orders them by publication time,
// newest first with undated headlines last, then by fetch time. The limit
// applies after sorting.
func newestFirst(records []types.Headline, c filter.Criteria) []types.Headline {
	limit := c.Limit
	c.Limit = 0
	matches := filter.Apply(records, c)
	slices.SortStableFunc(matches, compareNewest)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func compareNewest(a, b types.Headline) int {
	pa, okA := a.Published()
	pb, okB := b.Published()
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case okA && okB && !pa.Equal(pb):
		return pb.Compare(pa)
	}
	return b.FetchedAt.Compare(a.FetchedAt)
}

// printHeadlines writes one block per headline: a header line, the title
// truncated to width, and the link.
func printHeadlines(w io.Writer, records []types.Headline, width int) {
	for i, h := range records {
		date := "-"
		if p, ok := h.Published(); ok {
			date = p.Format("2006-01-02 15:04")
		} else if !h.FetchedAt.IsZero() {
			date = h.FetchedAt.Format("2006-01-02 15:04") + " (fetched)"
		}

		fmt.Fprintf(w, "[%d] %s | %s\n", i+1, h.Source, date)
		fmt.Fprintln(w, runewidth.Truncate(h.Title, width, "…"))
		if h.URL != "" {
			fmt.Fprintln(w, h.URL)
		}
		fmt.Fprintln(w)
	}
}

// terminalWidth returns the width of stdout, COLUMNS, or defaultWidth.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return defaultWidth
}
