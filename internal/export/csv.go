package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// CSVExporter writes a header row followed by one row per headline.
type CSVExporter struct{}

func (e *CSVExporter) Format() string { return "csv" }

func (e *CSVExporter) Export(w io.Writer, records []types.Headline) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(types.Columns); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, h := range records {
		if err := cw.Write(h.Row()); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
