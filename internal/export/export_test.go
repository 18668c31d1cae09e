package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

func records() []types.Headline {
	a := types.NewHeadline("BBC", "Election results, part \"one\"", "https://bbc.example/1")
	a.SetPublished(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	a.Summary = "Line one\nline two"

	b := types.NewHeadline("CNN", "=SUM(A1:A2)", "")

	c := types.NewHeadline("Wire", "日本語の見出し", "https://wire.example/3")
	c.Summary = "tail"
	return []types.Headline{a, b, c}
}

func assertRows(t *testing.T, rows [][]string, want []types.Headline) {
	t.Helper()
	if len(rows) != len(want)+1 {
		t.Fatalf("expected %d rows including header, got %d", len(want)+1, len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(types.Columns, ",") {
		t.Errorf("unexpected header: %v", rows[0])
	}
	for i, h := range want {
		got := rows[i+1]
		exp := h.Row()
		// Spreadsheet readers drop trailing empty cells.
		for len(got) < len(exp) {
			got = append(got, "")
		}
		for j := range exp {
			if got[j] != exp[j] {
				t.Errorf("row %d column %s = %q, want %q", i+1, types.Columns[j], got[j], exp[j])
			}
		}
	}
}

func TestExportFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "export.csv")
	want := records()

	if err := ExportFile(path, "csv", want); err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read CSV: %v", err)
	}
	assertRows(t, rows, want)
}

func TestExportFileXLSX(t *testing.T) {
	for _, format := range []string{"xlsx", "excel"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "export.xlsx")
			want := records()

			if err := ExportFile(path, format, want); err != nil {
				t.Fatalf("ExportFile() error: %v", err)
			}

			f, err := excelize.OpenFile(path)
			if err != nil {
				t.Fatalf("open workbook: %v", err)
			}
			defer f.Close()

			if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != DefaultSheetName {
				t.Fatalf("unexpected sheets: %v", sheets)
			}
			rows, err := f.GetRows(DefaultSheetName)
			if err != nil {
				t.Fatalf("read rows: %v", err)
			}
			assertRows(t, rows, want)
		})
	}
}

func TestExportFileJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.jsonl")
	want := records()

	if err := ExportFile(path, "jsonl", want); err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []types.Headline
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var h types.Headline
		if err := json.Unmarshal(scanner.Bytes(), &h); err != nil {
			t.Fatalf("line %d: %v", len(got)+1, err)
		}
		got = append(got, h)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("line %d differs: %+v", i+1, got[i])
		}
	}
}

func TestExportEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ExportFile(path, "csv", nil); err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != strings.Join(types.Columns, ",") {
		t.Errorf("expected header only, got %q", data)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	err := ExportFile(filepath.Join(t.TempDir(), "x.pdf"), "pdf", records())

	var ee *types.ExportError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExportError, got %v", err)
	}
	if !errors.Is(err, types.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNewUsesConfiguredSheet(t *testing.T) {
	cfg := config.DefaultConfig().Export
	cfg.SheetName = "news"

	e, err := New("EXCEL", cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	x, ok := e.(*XLSXExporter)
	if !ok || x.sheet() != "news" {
		t.Fatalf("expected XLSX exporter with sheet news, got %#v", e)
	}
}

func TestXLSXRejectsOversizedCell(t *testing.T) {
	recs := records()
	recs[1].Summary = strings.Repeat("x", excelize.TotalCellChars+1)
	path := filepath.Join(t.TempDir(), "long.xlsx")

	err := ExportFile(path, "xlsx", recs)
	if !errors.Is(err, ErrCellTooLong) {
		t.Fatalf("expected ErrCellTooLong, got %v", err)
	}
	var ee *types.ExportError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExportError, got %T", err)
	}
	if !strings.Contains(err.Error(), "row 3 column E (summary)") {
		t.Errorf("error should name the cell: %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("partial workbook should be removed, stat err: %v", statErr)
	}
}

func TestXLSXKeepsCellAtLimit(t *testing.T) {
	h := types.NewHeadline("Wire", "Long read", "")
	h.Summary = strings.Repeat("é", excelize.TotalCellChars)
	path := filepath.Join(t.TempDir(), "limit.xlsx")

	if err := ExportFile(path, "xlsx", []types.Headline{h}); err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(DefaultSheetName, "E2")
	if err != nil {
		t.Fatalf("GetCellValue() error: %v", err)
	}
	if got != h.Summary {
		t.Errorf("summary changed: got %d runes, want %d", len([]rune(got)), excelize.TotalCellChars)
	}
}
