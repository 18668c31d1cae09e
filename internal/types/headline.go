package types

import (
	"strings"
	"time"
)

// Headline is a single news item produced by a source.
type Headline struct {
	// Title is the headline text.
	Title string `json:"title"`

	// Source names the originating outlet (e.g. "BBC").
	Source string `json:"source"`

	// PublishedAt is nil when the source does not expose a date.
	PublishedAt *time.Time `json:"published_at"`

	// URL links to the full article. Empty when unknown.
	URL string `json:"url,omitempty"`

	// Summary is the description or teaser text, if any.
	Summary string `json:"summary,omitempty"`

	// FetchedAt is when the headline was fetched.
	FetchedAt time.Time `json:"fetched_at"`
}

// NewHeadline creates a Headline stamped with the current time.
func NewHeadline(source, title, link string) Headline {
	return Headline{
		Title:     title,
		Source:    source,
		URL:       link,
		FetchedAt: time.Now().UTC(),
	}
}

// SetPublished records a publication time, normalized to UTC.
// A zero time clears the field.
func (h *Headline) SetPublished(t time.Time) {
	if t.IsZero() {
		h.PublishedAt = nil
		return
	}
	u := t.UTC()
	h.PublishedAt = &u
}

// Published returns the publication time and whether it is known.
func (h Headline) Published() (time.Time, bool) {
	if h.PublishedAt == nil {
		return time.Time{}, false
	}
	return *h.PublishedAt, true
}

// Columns are the field names used by tabular stores and exporters, in order.
var Columns = []string{"title", "source", "published_at", "url", "summary", "fetched_at"}

// Row returns the headline as strings in Columns order. Times are RFC3339
// with as much precision as they carry.
func (h Headline) Row() []string {
	published := ""
	if h.PublishedAt != nil {
		published = h.PublishedAt.Format(time.RFC3339Nano)
	}
	fetched := ""
	if !h.FetchedAt.IsZero() {
		fetched = h.FetchedAt.Format(time.RFC3339Nano)
	}
	return []string{h.Title, h.Source, published, h.URL, h.Summary, fetched}
}

// Equal reports whether two headlines carry the same data.
// Times are compared as instants.
func (h Headline) Equal(o Headline) bool {
	if h.Title != o.Title || h.Source != o.Source || h.URL != o.URL || h.Summary != o.Summary {
		return false
	}
	if !h.FetchedAt.Equal(o.FetchedAt) {
		return false
	}
	switch {
	case h.PublishedAt == nil && o.PublishedAt == nil:
		return true
	case h.PublishedAt == nil || o.PublishedAt == nil:
		return false
	default:
		return h.PublishedAt.Equal(*o.PublishedAt)
	}
}

// String renders a short human-readable form.
func (h Headline) String() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(h.Source)
	b.WriteString("] ")
	b.WriteString(h.Title)
	return b.String()
}

