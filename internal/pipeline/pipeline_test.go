package pipeline

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"unicode/utf8"

	"github.com/IshaanNene/newsgoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})

	h := types.NewHeadline(" BBC ", "  Hello World  ", " https://example.com/a ")
	h.Summary = " spaces "

	result, err := p.Process(&h)
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Title != "Hello World" {
		t.Errorf("expected trimmed title, got %q", result.Title)
	}
	if result.Source != "BBC" || result.URL != "https://example.com/a" || result.Summary != "spaces" {
		t.Errorf("expected trimmed fields, got %+v", result)
	}
}

func TestRequiredFieldsMiddleware(t *testing.T) {
	m := &RequiredFieldsMiddleware{Fields: []string{"title"}}

	h1 := types.NewHeadline("BBC", "Hello", "")
	result, err := m.Process(&h1)
	if err != nil || result == nil {
		t.Error("headline with a title should pass")
	}

	h2 := types.NewHeadline("BBC", "", "https://example.com")
	result, err = m.Process(&h2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Error("headline without a title should be dropped (nil)")
	}
}

func TestRequiredFieldsUnknownField(t *testing.T) {
	p := New(testLogger)
	p.Use(&RequiredFieldsMiddleware{Fields: []string{"author"}})

	h := types.NewHeadline("BBC", "Hello", "")
	_, err := p.Process(&h)

	var pe *types.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pe.Stage != "required_fields" {
		t.Errorf("expected stage required_fields, got %q", pe.Stage)
	}
}

func TestTrimMiddlewareRepairsUTF8(t *testing.T) {
	m := &TrimMiddleware{}
	h := types.NewHeadline(" BBC ", " bad \xff title ", "")
	h.Summary = "caf\xc3"

	result, err := m.Process(&h)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if result.Title != "bad \uFFFD title" || result.Source != "BBC" {
		t.Errorf("unexpected title/source: %q / %q", result.Title, result.Source)
	}
	if !utf8.ValidString(result.Summary) {
		t.Errorf("summary still invalid: %q", result.Summary)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back types.Headline
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Title != result.Title || back.Summary != result.Summary {
		t.Errorf("text changed in JSON round trip: %q -> %q", result.Title, back.Title)
	}
}

func TestHTMLSanitizeMiddleware(t *testing.T) {
	m := NewHTMLSanitizeMiddleware()
	h := types.NewHeadline("BBC", "Markets &amp; <em>rates</em>", "")
	h.Summary = `<p>Hello <b>World</b></p> &amp; <a href="x">link</a>`

	result, err := m.Process(&h)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if result.Title != "Markets & rates" {
		t.Errorf("expected 'Markets & rates', got %q", result.Title)
	}
	if result.Summary != "Hello World & link" {
		t.Errorf("expected 'Hello World & link', got %q", result.Summary)
	}

	h = types.NewHeadline("BBC", "<script>alert(1)</script>Breaking", "")
	result, _ = m.Process(&h)
	if result.Title != "Breaking" {
		t.Errorf("expected script content dropped, got %q", result.Title)
	}
}

func TestSourceDefaultMiddleware(t *testing.T) {
	tests := []struct {
		source, url, want string
	}{
		{"CNN", "https://edition.cnn.com/x", "CNN"},
		{"", "https://www.Reuters.com/world", "reuters.com"},
		{"", "", "unknown"},
	}

	m := &SourceDefaultMiddleware{}
	for _, tt := range tests {
		h := types.NewHeadline(tt.source, "t", tt.url)
		result, _ := m.Process(&h)
		if result.Source != tt.want {
			t.Errorf("source(%q, %q) = %q, want %q", tt.source, tt.url, result.Source, tt.want)
		}
	}
}

func TestDefaultPipeline(t *testing.T) {
	p := Default(testLogger)
	if p.Len() != 4 {
		t.Fatalf("expected 4 middlewares, got %d", p.Len())
	}

	h := types.NewHeadline("", "  <b>Breaking</b>  news ", "https://news.example/a")
	result, err := p.Process(&h)
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Title != "Breaking news" || result.Source != "news.example" {
		t.Errorf("unexpected result: %+v", result)
	}

	empty := types.NewHeadline("BBC", " <br/> ", "")
	result, err = p.Process(&empty)
	if err != nil || result != nil {
		t.Errorf("markup-only title should be dropped, got %+v, %v", result, err)
	}
}

func BenchmarkDefaultPipeline(b *testing.B) {
	p := Default(testLogger)
	for i := 0; i < b.N; i++ {
		h := types.NewHeadline("BBC", "  <b>Breaking</b> news &amp; more ", "https://example.com")
		p.Process(&h)
	}
}
