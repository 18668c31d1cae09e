package parser

import (
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// CSSParser extracts headlines using CSS selectors via goquery.
type CSSParser struct {
	logger *slog.Logger
}

// NewCSSParser creates a new CSS selector parser.
func NewCSSParser(logger *slog.Logger) *CSSParser {
	return &CSSParser{
		logger: logger.With("component", "css_parser"),
	}
}

// Parse implements Parser.
func (p *CSSParser) Parse(resp *types.Response, rule config.ScrapeRule, source string, limit int) ([]types.Headline, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{Source: source, URL: resp.BaseURL(), Err: err}
	}

	base, _ := url.Parse(resp.BaseURL())

	var out []types.Headline
	doc.Find(rule.Item).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if h, ok := p.extract(sel, rule).toHeadline(source, base); ok {
			out = append(out, h)
		}
		return limit <= 0 || len(out) < limit
	})

	p.logger.Debug("css rules applied", "source", source, "selector", rule.Item, "headlines", len(out))
	return out, nil
}

// extract pulls raw values for one item selection.
func (p *CSSParser) extract(sel *goquery.Selection, rule config.ScrapeRule) extracted {
	var e extracted

	titleSel := sel
	if rule.Title != "" {
		titleSel = sel.Find(rule.Title).First()
	}
	e.title = titleSel.Text()

	e.href, _ = linkSelection(sel, rule).Attr(linkAttribute(rule))

	if rule.Date != "" {
		dateSel := sel.Find(rule.Date).First()
		if rule.DateAttribute != "" {
			e.date, _ = dateSel.Attr(rule.DateAttribute)
		} else {
			e.date = dateSel.Text()
		}
	}

	if rule.Summary != "" {
		e.summary = sel.Find(rule.Summary).First().Text()
	}

	return e
}

// linkSelection finds the node carrying the article link: the Link
// selector if set, else the item itself when it is an anchor, else the
// nearest enclosing anchor, else the first anchor inside the item.
func linkSelection(sel *goquery.Selection, rule config.ScrapeRule) *goquery.Selection {
	if rule.Link != "" {
		return sel.Find(rule.Link).First()
	}
	if goquery.NodeName(sel) == "a" {
		return sel
	}
	if parent := sel.Closest("a"); parent.Length() > 0 {
		return parent
	}
	return sel.Find("a[href]").First()
}
