package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/newsgoat/internal/export"
	"github.com/IshaanNene/newsgoat/internal/filter"
)

var (
	exportFormat  string
	exportOut     string
	exportSource  string
	exportKeyword string
	exportStart   string
	exportEnd     string
)

// exportCmd creates the "export" subcommand.
func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored headlines to CSV, XLSX, or JSONL",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	cmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv, xlsx (or excel), jsonl (default from config)")
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default from config)")
	cmd.Flags().StringVarP(&exportSource, "source", "s", "", "source name contains")
	cmd.Flags().StringVarP(&exportKeyword, "keyword", "k", "", "keyword in title, summary, or URL")
	cmd.Flags().StringVar(&exportStart, "start", "", "earliest publication date")
	cmd.Flags().StringVar(&exportEnd, "end", "", "latest publication date")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	format := cfg.Export.Format
	if exportFormat != "" {
		format = exportFormat
	}
	out := cfg.Export.Path
	if exportOut != "" {
		out = exportOut
	}

	exporter, err := export.New(format, cfg.Export)
	if err != nil {
		return err
	}

	criteria, err := buildCriteria(exportSource, exportKeyword, exportStart, exportEnd, 0)
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

	matches := filter.Apply(records, criteria)
	if len(matches) == 0 {
		logger.Warn("no headlines match the filters, nothing to export", "stored", len(records))
		return nil
	}

	if err := export.WriteFile(out, exporter, matches); err != nil {
		return err
	}

	logger.Info("export written", "format", exporter.Format(), "path", out, "records", len(matches))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d headlines to %s\n", len(matches), out)
	return nil
}
