package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func newRequest(t *testing.T, url string) *types.Request {
	t.Helper()
	req, err := types.NewRequest(url)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Source = "test"
	return req
}

func TestHTTPFetcherPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><h3>Hello</h3></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := f.Fetch(context.Background(), newRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	doc, err := resp.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if got := doc.Find("h3").Text(); got != "Hello" {
		t.Errorf("expected 'Hello', got %q", got)
	}
}

func TestHTTPFetcherDecodesGzipAndBrotli(t *testing.T) {
	const page = "<html><body>compressed body</body></html>"

	tests := []struct {
		encoding string
		encode   func([]byte) []byte
	}{
		{"gzip", func(b []byte) []byte {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			zw.Write(b)
			zw.Close()
			return buf.Bytes()
		}},
		{"br", func(b []byte) []byte {
			var buf bytes.Buffer
			bw := brotli.NewWriter(&buf)
			bw.Write(b)
			bw.Close()
			return buf.Bytes()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Header().Set("Content-Encoding", tt.encoding)
				w.Write(tt.encode([]byte(page)))
			}))
			defer srv.Close()

			resp, err := newTestFetcher(t).Fetch(context.Background(), newRequest(t, srv.URL))
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if string(resp.Body) != page {
				t.Errorf("expected decoded body, got %q", resp.Body)
			}
		})
	}
}

func TestHTTPFetcherCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Café" in Latin-1.
		w.Write([]byte{'C', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), newRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(resp.Body) != "Café" {
		t.Errorf("expected UTF-8 'Café', got %q", resp.Body)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t).Fetch(context.Background(), newRequest(t, srv.URL))
	if err == nil {
		t.Fatal("expected error for 401")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.StatusCode != http.StatusUnauthorized || fe.Source != "test" {
		t.Errorf("unexpected FetchError fields: %+v", fe)
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected body snippet in error, got %v", err)
	}
}

func TestRouterUsesHTTPForPlainRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r, err := NewRouter(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	r.newBrowser = func() (Fetcher, error) {
		t.Fatal("browser should not be launched for http requests")
		return nil, nil
	}
	defer r.Close()

	resp, err := r.Fetch(context.Background(), newRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestRouterReportsBrowserLaunchFailure(t *testing.T) {
	r, err := NewRouter(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	r.newBrowser = func() (Fetcher, error) { return nil, errors.New("no chromium") }
	defer r.Close()

	req := newRequest(t, "https://example.com")
	req.Render = types.RenderBrowser
	_, err = r.Fetch(context.Background(), req)

	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
