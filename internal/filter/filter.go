// Package filter selects stored headlines by source, keyword, and date.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// Criteria narrows a dataset. Zero-valued fields are inactive; active
// fields combine with AND.
type Criteria struct {
	// Source matches case-insensitively anywhere in the headline's source.
	Source string

	// Keyword matches case-insensitively in the title, summary, or URL.
	Keyword string

	// Start and End bound PublishedAt inclusively. Headlines without a
	// publication date never match an active bound.
	Start *time.Time
	End   *time.Time

	// Limit caps the result after filtering when > 0.
	Limit int
}

// Active reports whether any criterion other than Limit is set.
func (c Criteria) Active() bool {
	return strings.TrimSpace(c.Source) != "" || strings.TrimSpace(c.Keyword) != "" ||
		c.Start != nil || c.End != nil
}

// Match reports whether h satisfies every active criterion.
func (c Criteria) Match(h types.Headline) bool {
	if src := strings.ToLower(strings.TrimSpace(c.Source)); src != "" {
		if !strings.Contains(strings.ToLower(h.Source), src) {
			return false
		}
	}

	if kw := strings.ToLower(strings.TrimSpace(c.Keyword)); kw != "" {
		if !strings.Contains(strings.ToLower(h.Title), kw) &&
			!strings.Contains(strings.ToLower(h.Summary), kw) &&
			!strings.Contains(strings.ToLower(h.URL), kw) {
			return false
		}
	}

	if c.Start != nil || c.End != nil {
		published, ok := h.Published()
		if !ok {
			return false
		}
		if c.Start != nil && published.Before(*c.Start) {
			return false
		}
		if c.End != nil && published.After(*c.End) {
			return false
		}
	}

	return true
}

// Apply returns the headlines matching c, in their original order.
func Apply(records []types.Headline, c Criteria) []types.Headline {
	out := make([]types.Headline, 0, len(records))
	for _, h := range records {
		if c.Limit > 0 && len(out) >= c.Limit {
			break
		}
		if c.Match(h) {
			out = append(out, h)
		}
	}
	return out
}

// ParseBound parses a date bound from the command line. An empty string
// yields nil. A bare YYYY-MM-DD end bound covers the whole day.
func ParseBound(s string, end bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	t, ok := types.ParseTimestamp(s)
	if !ok {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
	}
	if end && types.IsDateOnly(s) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
