package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestHeadlineSetPublished(t *testing.T) {
	h := NewHeadline("BBC", "Title", "https://bbc.example/1")
	if h.FetchedAt.IsZero() || h.FetchedAt.Location() != time.UTC {
		t.Fatalf("expected FetchedAt in UTC, got %v", h.FetchedAt)
	}

	local := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3*3600))
	h.SetPublished(local)
	got, ok := h.Published()
	if !ok || !got.Equal(local) || got.Location() != time.UTC {
		t.Errorf("expected %v in UTC, got %v (%v)", local, got, ok)
	}

	h.SetPublished(time.Time{})
	if _, ok := h.Published(); ok || h.PublishedAt != nil {
		t.Error("zero time should clear PublishedAt")
	}
}

func TestHeadlineRow(t *testing.T) {
	h := NewHeadline("CNN", "Storm", "")
	h.FetchedAt = time.Date(2024, 5, 2, 8, 0, 0, 500, time.UTC)
	h.SetPublished(time.Date(2024, 5, 2, 7, 0, 0, 0, time.UTC))

	row := h.Row()
	if len(row) != len(Columns) {
		t.Fatalf("expected %d columns, got %d", len(Columns), len(row))
	}
	want := []string{"Storm", "CNN", "2024-05-02T07:00:00Z", "", "", "2024-05-02T08:00:00.0000005Z"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %s = %q, want %q", Columns[i], row[i], want[i])
		}
	}

	h.PublishedAt = nil
	if h.Row()[2] != "" {
		t.Errorf("unknown date should export empty, got %q", h.Row()[2])
	}
}

func TestHeadlineEqual(t *testing.T) {
	a := NewHeadline("BBC", "Title", "https://bbc.example/1")
	a.SetPublished(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	b := NewHeadline("BBC", "Title", "https://bbc.example/1")
	b.SetPublished(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if !a.Equal(b) {
		t.Fatal("identical headlines should be equal")
	}

	b.SetPublished(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC))
	if a.Equal(b) {
		t.Error("different publication times should not be equal")
	}

	c := a
	c.PublishedAt = nil
	if a.Equal(c) || c.Equal(a) {
		t.Error("nil and non-nil dates should differ")
	}
}

func TestHeadlineJSON(t *testing.T) {
	h := NewHeadline("BBC", "Title", "")
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if v, ok := m["published_at"]; !ok || v != nil {
		t.Errorf("expected null published_at, got %v", v)
	}
	if _, ok := m["url"]; ok {
		t.Error("empty url should be omitted")
	}

	var back Headline
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(h) {
		t.Errorf("round trip mismatch: %+v vs %+v", back, h)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	tests := []string{
		"2024-05-01T09:30:00Z",
		"2024-05-01T11:30:00+02:00",
		"Wed, 01 May 2024 09:30:00 GMT",
		"Wed, 01 May 2024 09:30:00 +0000",
		"2024-05-01 09:30:00",
		"2024-05-01T09:30:00",
	}
	for _, in := range tests {
		got, ok := ParseTimestamp(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, %v", in, got, ok)
		}
	}

	day, ok := ParseTimestamp(" May 1, 2024 ")
	if !ok || !day.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date-only parse: %v, %v", day, ok)
	}

	for _, bad := range []string{"", "yesterday", "2024-13-45"} {
		if _, ok := ParseTimestamp(bad); ok {
			t.Errorf("ParseTimestamp(%q) should fail", bad)
		}
	}

	if !IsDateOnly("2024-05-01") || IsDateOnly("2024-05-01T00:00:00Z") {
		t.Error("IsDateOnly mismatch")
	}
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("https://www.bbc.com/news")
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	if req.Domain() != "www.bbc.com" || req.Render != RenderHTTP || req.Headers == nil {
		t.Errorf("unexpected request: %+v", req)
	}

	for _, bad := range []string{"ftp://example.com", "://nope", "mailto:a@b.c"} {
		if _, err := NewRequest(bad); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("NewRequest(%q) expected ErrInvalidURL, got %v", bad, err)
		}
	}
}

func TestErrorsUnwrap(t *testing.T) {
	base := errors.New("boom")
	tests := []error{
		&FetchError{Source: "bbc", URL: "https://bbc.example", StatusCode: 500, Err: base},
		&ParseError{Source: "bbc", Selector: "h3", Err: base},
		&SourceError{Source: "bbc", Err: base},
		&StorageError{Backend: "sqlite", Op: "save", Err: base},
		&ExportError{Format: "csv", Path: "x.csv", Err: base},
		&PipelineError{Stage: "trim", Err: base},
	}
	for _, err := range tests {
		wrapped := fmt.Errorf("outer: %w", err)
		if !errors.Is(wrapped, base) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
		if err.Error() == "" {
			t.Errorf("%T has empty message", err)
		}
	}

	var fe *FetchError
	if !errors.As(fmt.Errorf("x: %w", &SourceError{Source: "a", Err: &FetchError{StatusCode: 404, Err: base}}), &fe) || fe.StatusCode != 404 {
		t.Error("FetchError should be reachable through SourceError")
	}
}
