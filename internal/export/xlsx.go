package export

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "headlines"

// ErrCellTooLong reports a value longer than a spreadsheet cell can hold.
var ErrCellTooLong = errors.New("value exceeds the xlsx cell limit")

// XLSXExporter writes a single-sheet workbook.
type XLSXExporter struct {
	SheetName string
}

func (e *XLSXExporter) Format() string { return "xlsx" }

func (e *XLSXExporter) sheet() string {
	if e.SheetName == "" {
		return DefaultSheetName
	}
	return e.SheetName
}

func (e *XLSXExporter) Export(w io.Writer, records []types.Headline) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := e.sheet()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, types.Columns); err != nil {
		return err
	}
	for i, h := range records {
		if err := writeRow(f, sheet, i+2, h.Row()); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		// excelize truncates longer values without an error.
		if n := utf8.RuneCountInString(v); n > excelize.TotalCellChars {
			col, _ := excelize.ColumnNumberToName(i + 1)
			return &types.ExportError{
				Format: "xlsx",
				Err: fmt.Errorf("row %d column %s (%s): %d characters: %w",
					row, col, columnName(i), n, ErrCellTooLong),
			}
		}
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func columnName(i int) string {
	if i < len(types.Columns) {
		return types.Columns[i]
	}
	return "?"
}
