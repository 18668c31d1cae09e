package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/engine"
	"github.com/IshaanNene/newsgoat/internal/filter"
	"github.com/IshaanNene/newsgoat/internal/observability"
	"github.com/IshaanNene/newsgoat/internal/types"
)

func TestApplyCLIOverrides(t *testing.T) {
	defer func() { storeType, storePath, newsAPIKey, newsAPIPage = "", "", "", 0 }()

	storeType = "JSON"
	storePath = "/tmp/news.json"
	newsAPIKey = "abc"
	newsAPIPage = 3

	cfg := config.DefaultConfig()
	applyCLIOverrides(cfg)

	if cfg.Storage.Type != "json" || cfg.Storage.Path != "/tmp/news.json" {
		t.Errorf("storage overrides not applied: %+v", cfg.Storage)
	}
	if cfg.NewsAPI.APIKey != "abc" || cfg.NewsAPI.MaxPages != 3 {
		t.Errorf("newsapi overrides not applied: %+v", cfg.NewsAPI)
	}
}

func TestStoreOverrideSwitchesDefaultPath(t *testing.T) {
	defer func() { storeType, storePath = "", "" }()

	tests := []struct {
		name       string
		configPath string
		store      string
		db         string
		wantPath   string
	}{
		{"json without --db", "news.db", "json", "", "news.json"},
		{"sqlite from json default", "news.json", "sqlite", "", "news.db"},
		{"explicit --db wins", "news.db", "json", "data/h.json", "data/h.json"},
		{"configured path kept", "archive/h.db", "json", "", "archive/h.db"},
		{"mongodb keeps path", "news.db", "mongodb", "", "news.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storeType, storePath = tt.store, tt.db
			cfg := config.DefaultConfig()
			if tt.configPath == "news.json" {
				cfg.Storage.Type = "json"
			}
			cfg.Storage.Path = tt.configPath

			applyCLIOverrides(cfg)

			if cfg.Storage.Type != tt.store || cfg.Storage.Path != tt.wantPath {
				t.Errorf("got %s at %q, want %s at %q", cfg.Storage.Type, cfg.Storage.Path, tt.store, tt.wantPath)
			}
		})
	}
}

func TestBuildCriteria(t *testing.T) {
	c, err := buildCriteria("bbc", "vote", "2024-05-01", "2024-05-01", 10)
	if err != nil {
		t.Fatalf("buildCriteria() error: %v", err)
	}
	if c.Source != "bbc" || c.Keyword != "vote" || c.Limit != 10 {
		t.Errorf("unexpected criteria: %+v", c)
	}
	if c.End.Sub(*c.Start) != 24*time.Hour-time.Nanosecond {
		t.Errorf("end should cover the whole day: %v to %v", c.Start, c.End)
	}

	if _, err := buildCriteria("", "", "2024-05-02", "2024-05-01", 0); err == nil {
		t.Error("expected error when end precedes start")
	}
	if _, err := buildCriteria("", "", "soon", "", 0); err == nil {
		t.Error("expected error for invalid start")
	}
}

func TestPrintHeadlinesTruncatesTitle(t *testing.T) {
	h := types.NewHeadline("BBC", "日本語のとても長い見出しがここにあります", "https://bbc.example/1")
	h.SetPublished(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))

	var buf bytes.Buffer
	printHeadlines(&buf, []types.Headline{h}, 12)

	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "[1] BBC | 2024-05-01 09:30" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "…") || len([]rune(lines[1])) > 6 {
		t.Errorf("title not truncated to width: %q", lines[1])
	}
	if lines[2] != "https://bbc.example/1" {
		t.Errorf("unexpected link line: %q", lines[2])
	}
}

func TestViewShowsNewestFirst(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 8, 0, 0, 0, time.UTC) }

	oldest := types.NewHeadline("BBC", "Oldest", "")
	oldest.SetPublished(day(1))
	undated := types.NewHeadline("BBC", "Undated", "")
	undated.FetchedAt = day(9)
	newest := types.NewHeadline("CNN", "Newest", "")
	newest.SetPublished(day(7))
	middle := types.NewHeadline("BBC", "Middle", "")
	middle.SetPublished(day(4))
	middle.FetchedAt = day(3)
	sameDayEarly := types.NewHeadline("BBC", "Same day, fetched early", "")
	sameDayEarly.SetPublished(day(4))
	sameDayEarly.FetchedAt = day(4)
	sameDayLate := types.NewHeadline("BBC", "Same day, fetched late", "")
	sameDayLate.SetPublished(day(4))
	sameDayLate.FetchedAt = day(5)

	// Stored order is fetch order: oldest first.
	stored := []types.Headline{oldest, undated, middle, sameDayEarly, sameDayLate, newest}

	got := newestFirst(stored, filter.Criteria{})
	want := []string{"Newest", "Same day, fetched late", "Same day, fetched early", "Middle", "Oldest", "Undated"}
	if len(got) != len(want) {
		t.Fatalf("expected %d headlines, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i].Title, want[i])
		}
	}

	limited := newestFirst(stored, filter.Criteria{Source: "bbc", Limit: 2})
	if len(limited) != 2 || limited[0].Title != "Same day, fetched late" || limited[1].Title != "Same day, fetched early" {
		t.Errorf("limit should apply after sorting, got %v", limited)
	}

	var buf bytes.Buffer
	printHeadlines(&buf, got, 80)
	if first := strings.SplitN(buf.String(), "\n", 3); first[0] != "[1] CNN | 2024-05-07 08:00" || first[1] != "Newest" {
		t.Errorf("newest headline should print first, got %q", first[:2])
	}

	if stored[0].Title != "Oldest" {
		t.Error("stored records must not be reordered")
	}
}

func TestRecordSavedCountsNewHeadlines(t *testing.T) {
	m := observability.NewMetrics(slog.New(slog.NewTextHandler(io.Discard, nil)))
	existing := []types.Headline{types.NewHeadline("BBC", "Old", "")}
	res := &engine.Result{
		Records: append(existing, types.NewHeadline("CNN", "New", "")),
		Added:   1,
	}

	recordSaved(m, res)
	recordSaved(m, &engine.Result{Records: res.Records})

	if got := m.HeadlinesStored.Load(); got != 1 {
		t.Errorf("expected 1 stored headline across both runs, got %d", got)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"YES\n", true},
		{"YES", true},
		{"yes\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(strings.NewReader(tt.input), &out, "sure? "); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "sure? " {
			t.Errorf("prompt not written: %q", out.String())
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret("abcdef123456"); got != "********3456" {
		t.Errorf("maskSecret() = %q", got)
	}
	if got := maskSecret("abc"); got != "****" {
		t.Errorf("maskSecret(short) = %q", got)
	}
}
