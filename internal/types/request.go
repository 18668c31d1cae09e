package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Render modes for a request.
const (
	RenderHTTP    = "http"
	RenderBrowser = "browser"
)

// Request describes a page or API call a source wants fetched.
type Request struct {
	// URL is the target URL.
	URL *url.URL

	// Method is the HTTP method. Defaults to GET.
	Method string

	// Headers are sent in addition to the fetcher defaults.
	Headers http.Header

	// Source names the source that issued the request, for error reporting.
	Source string

	// Render selects the fetcher: RenderHTTP or RenderBrowser.
	Render string

	// Timeout overrides the fetcher timeout when non-zero.
	Timeout time.Duration

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a GET request for rawURL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidURL, rawURL)
	}

	return &Request{
		URL:       u,
		Method:    http.MethodGet,
		Headers:   make(http.Header),
		Render:    RenderHTTP,
		CreatedAt: time.Now(),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Domain returns the hostname of the request URL.
func (r *Request) Domain() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}
