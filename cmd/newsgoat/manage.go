package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/newsgoat/internal/engine"
	"github.com/IshaanNene/newsgoat/internal/source"
)

var (
	dedupeByURL bool
	clearYes    bool
)

// dedupeCmd creates the "dedupe" subcommand.
func dedupeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate headlines from the store",
		Long: `Remove stored headlines whose normalized title and source match an
earlier headline. With --by-url, headlines linking to an already kept
article are removed too. The first occurrence is kept.`,
		Args: cobra.NoArgs,
		RunE: runDedupe,
	}

	cmd.Flags().BoolVar(&dedupeByURL, "by-url", true, "also drop headlines with an already seen URL")
	return cmd
}

func runDedupe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
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

	kept, dropped := engine.Dedupe(records, dedupeByURL)
	if dropped > 0 {
		if err := store.Save(ctx, kept); err != nil {
			return err
		}
	}

	logger.Info("deduplication complete", "kept", len(kept), "removed", dropped)
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d duplicates, %d headlines remain\n", dropped, len(kept))
	return nil
}

// listSourcesCmd creates the "list-sources" subcommand.
func listSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-sources",
		Short: "List built-in and configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			catalog := source.NewCatalog(cfg, nil, nil, logger)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tORIGIN\tSTATUS\tURL")
			for _, e := range catalog.Entries() {
				status := "enabled"
				if e.Disabled {
					status = "disabled"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Origin, status, e.URL)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if !catalog.HasNewsAPI() {
				fmt.Fprintln(cmd.OutOrStdout(), "\nSet NEWSAPI_KEY or --newsapi-key on fetch to enable NewsAPI.")
			}
			return nil
		},
	}
}

// clearCmd creates the "clear" subcommand.
func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored headlines",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}

	cmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	if !clearYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
		"Are you sure you want to DELETE ALL headlines? Type YES to confirm: ") {
		logger.Info("aborted")
		return nil
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, nil); err != nil {
		return err
	}

	logger.Warn("all headlines cleared", "backend", store.Name())
	return nil
}

// confirm prints prompt and reports whether the reply is exactly YES.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimRight(line, "\r\n") == "YES"
}
