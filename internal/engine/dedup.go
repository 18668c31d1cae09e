package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// keySep joins the normalized title and source in a dedup key.
const keySep = "\x1f"

// Normalize prepares text for comparison: NFKC, full case folding, and
// trimmed, collapsed whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Key returns the identity of a headline: its normalized title and source.
func Key(h types.Headline) string {
	return Normalize(h.Title) + keySep + Normalize(h.Source)
}

// Deduplicator drops headlines already seen by key and, optionally, by
// canonical URL. Only kept headlines are recorded, so running it twice
// over its own output keeps everything.
type Deduplicator struct {
	byURL bool

	mu   sync.RWMutex
	keys map[string]struct{}
	urls map[string]struct{}
}

// NewDeduplicator creates a new Deduplicator with the given estimated capacity.
func NewDeduplicator(estimatedCapacity int, byURL bool) *Deduplicator {
	return &Deduplicator{
		byURL: byURL,
		keys:  make(map[string]struct{}, estimatedCapacity),
		urls:  make(map[string]struct{}, estimatedCapacity),
	}
}

// seen must be called with mu held.
func (d *Deduplicator) seen(h types.Headline) bool {
	if _, ok := d.keys[Key(h)]; ok {
		return true
	}
	if d.byURL && h.URL != "" {
		if _, ok := d.urls[hashURL(CanonicalizeURL(h.URL))]; ok {
			return true
		}
	}
	return false
}

// Add keeps h unless it was seen before. It reports whether h was kept.
func (d *Deduplicator) Add(h types.Headline) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen(h) {
		return false
	}
	d.keys[Key(h)] = struct{}{}
	if d.byURL && h.URL != "" {
		d.urls[hashURL(CanonicalizeURL(h.URL))] = struct{}{}
	}
	return true
}

// Count returns the number of unique headlines kept.
func (d *Deduplicator) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.keys)
}

// Dedupe returns records with later duplicates removed, preserving order,
// and the number of records dropped.
func Dedupe(records []types.Headline, byURL bool) ([]types.Headline, int) {
	d := NewDeduplicator(len(records), byURL)
	out := make([]types.Headline, 0, len(records))
	for _, h := range records {
		if d.Add(h) {
			out = append(out, h)
		}
	}
	return out, len(records) - d.Count()
}

// CanonicalizeURL normalizes a URL for deduplication:
// - lowercases scheme and host
// - removes fragment
// - sorts query parameters
// - removes trailing slash (except root)
// - removes default ports (80 for http, 443 for https)
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = host
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// hashURL creates a compact hash of a URL string.
func hashURL(canonicalURL string) string {
	h := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(h[:16]) // 128-bit hash
}
