package pipeline

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// TrimMiddleware trims whitespace from the text fields and replaces
// invalid UTF-8 so that stored text reads back unchanged.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	h.Title = trimText(h.Title)
	h.Source = trimText(h.Source)
	h.URL = trimText(h.URL)
	h.Summary = trimText(h.Summary)
	return h, nil
}

func trimText(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, "\uFFFD"))
}

// HTMLSanitizeMiddleware strips tags and entities from title and summary.
// Feed descriptions and API teasers often carry markup.
type HTMLSanitizeMiddleware struct {
	policy *bluemonday.Policy
}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return &HTMLSanitizeMiddleware{policy: p}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	h.Title = m.clean(h.Title)
	h.Summary = m.clean(h.Summary)
	return h, nil
}

func (m *HTMLSanitizeMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	// The policy escapes the text it keeps.
	cleaned := html.UnescapeString(m.policy.Sanitize(s))
	return strings.Join(strings.Fields(cleaned), " ")
}

// RequiredFieldsMiddleware drops headlines with an empty required field.
// Known fields are title, source, and url.
type RequiredFieldsMiddleware struct {
	Fields []string
}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	for _, field := range m.Fields {
		var val string
		switch field {
		case "title":
			val = h.Title
		case "source":
			val = h.Source
		case "url":
			val = h.URL
		case "summary":
			val = h.Summary
		default:
			return nil, fmt.Errorf("unknown field %q", field)
		}
		if val == "" {
			return nil, nil
		}
	}
	return h, nil
}

// SourceDefaultMiddleware fills an empty source from the article host,
// or "unknown" when there is no usable URL.
type SourceDefaultMiddleware struct{}

func (m *SourceDefaultMiddleware) Name() string { return "source_default" }

func (m *SourceDefaultMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	if h.Source != "" {
		return h, nil
	}
	h.Source = "unknown"
	if u, err := url.Parse(h.URL); err == nil && u.Hostname() != "" {
		h.Source = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}
	return h, nil
}
