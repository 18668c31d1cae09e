// Package parser turns fetched front pages into headlines using
// configurable CSS or XPath rules.
package parser

import (
	"net/url"
	"strings"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// Parser extracts headlines from a fetched page.
type Parser interface {
	// Parse applies rule to resp and returns at most limit headlines
	// attributed to source. A limit <= 0 means no limit.
	Parse(resp *types.Response, rule config.ScrapeRule, source string, limit int) ([]types.Headline, error)
}

// extracted is the raw text pulled from one matched item.
type extracted struct {
	title   string
	href    string
	date    string
	summary string
}

// toHeadline cleans raw extracted values into a Headline.
// It returns false when the item has no usable title.
func (e extracted) toHeadline(source string, base *url.URL) (types.Headline, bool) {
	title := collapseSpace(e.title)
	if title == "" {
		return types.Headline{}, false
	}

	h := types.NewHeadline(source, title, resolveLink(base, e.href))
	h.Summary = collapseSpace(e.summary)
	if t, ok := types.ParseTimestamp(e.date); ok {
		h.SetPublished(t)
	}
	return h, true
}

// resolveLink makes href absolute against base. Non-HTTP links are dropped.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	ref.Fragment = ""
	return ref.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func linkAttribute(rule config.ScrapeRule) string {
	if rule.LinkAttribute != "" {
		return rule.LinkAttribute
	}
	return "href"
}
