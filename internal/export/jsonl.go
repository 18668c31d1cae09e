package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// JSONLExporter writes one JSON object per line.
type JSONLExporter struct{}

func (e *JSONLExporter) Format() string { return "jsonl" }

func (e *JSONLExporter) Export(w io.Writer, records []types.Headline) error {
	enc := json.NewEncoder(w)
	for _, h := range records {
		if err := enc.Encode(h); err != nil {
			return fmt.Errorf("encode JSONL: %w", err)
		}
	}
	return nil
}
