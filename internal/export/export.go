// Package export writes headline datasets to CSV, XLSX, and JSONL files.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// Exporter writes records to w in a single format.
type Exporter interface {
	// Export writes a header (where the format has one) and one entry per
	// record, in order.
	Export(w io.Writer, records []types.Headline) error

	// Format returns the canonical format name.
	Format() string
}

// NormalizeFormat maps user-facing format names to canonical ones.
func NormalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "csv", "jsonl":
		return f, nil
	case "xlsx", "excel":
		return "xlsx", nil
	case "ndjson":
		return "jsonl", nil
	default:
		return "", fmt.Errorf("%w: %q (use csv, xlsx, or jsonl)", types.ErrUnsupportedFormat, format)
	}
}

// New returns the exporter for format.
func New(format string, cfg config.ExportConfig) (Exporter, error) {
	canonical, err := NormalizeFormat(format)
	if err != nil {
		return nil, &types.ExportError{Format: format, Err: err}
	}
	switch canonical {
	case "csv":
		return &CSVExporter{}, nil
	case "xlsx":
		return &XLSXExporter{SheetName: cfg.SheetName}, nil
	default:
		return &JSONLExporter{}, nil
	}
}

// ExportFile writes records to path in format with default settings.
func ExportFile(path, format string, records []types.Headline) error {
	e, err := New(format, config.DefaultConfig().Export)
	if err != nil {
		return err
	}
	return WriteFile(path, e, records)
}

// WriteFile creates path, including parent directories, and writes
// records with e. A partially written file is removed on error.
func WriteFile(path string, e Exporter, records []types.Headline) error {
	if path == "" {
		return &types.ExportError{Format: e.Format(), Err: errors.New("output path is empty")}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &types.ExportError{Format: e.Format(), Path: path, Err: fmt.Errorf("create dir: %w", err)}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &types.ExportError{Format: e.Format(), Path: path, Err: err}
	}

	if err := e.Export(f, records); err != nil {
		f.Close()
		os.Remove(path)
		return &types.ExportError{Format: e.Format(), Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return &types.ExportError{Format: e.Format(), Path: path, Err: err}
	}
	return nil
}
