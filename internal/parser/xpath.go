package parser

import (
	"bytes"
	"log/slog"
	"net/url"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// XPathParser extracts headlines using XPath expressions.
type XPathParser struct {
	logger *slog.Logger
}

// NewXPathParser creates a new XPath parser.
func NewXPathParser(logger *slog.Logger) *XPathParser {
	return &XPathParser{
		logger: logger.With("component", "xpath_parser"),
	}
}

// Parse implements Parser. Title, Link, Date, and Summary expressions are
// evaluated with the item node as context, so they should be relative
// (for example ".//h3" or "./@href").
func (p *XPathParser) Parse(resp *types.Response, rule config.ScrapeRule, source string, limit int) ([]types.Headline, error) {
	doc, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.ParseError{Source: source, URL: resp.BaseURL(), Err: err}
	}

	nodes, err := htmlquery.QueryAll(doc, rule.Item)
	if err != nil {
		return nil, &types.ParseError{Source: source, URL: resp.BaseURL(), Selector: rule.Item, Err: err}
	}

	base, _ := url.Parse(resp.BaseURL())

	var out []types.Headline
	for _, node := range nodes {
		e, err := p.extract(node, rule)
		if err != nil {
			return nil, &types.ParseError{Source: source, URL: resp.BaseURL(), Err: err}
		}
		if h, ok := e.toHeadline(source, base); ok {
			out = append(out, h)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	p.logger.Debug("xpath rules applied", "source", source, "selector", rule.Item, "headlines", len(out))
	return out, nil
}

func (p *XPathParser) extract(node *html.Node, rule config.ScrapeRule) (extracted, error) {
	var e extracted

	titleNode := node
	if rule.Title != "" {
		n, err := htmlquery.Query(node, rule.Title)
		if err != nil {
			return e, err
		}
		titleNode = n
	}
	if titleNode != nil {
		e.title = htmlquery.InnerText(titleNode)
	}

	linkNode, err := xpathLinkNode(node, rule)
	if err != nil {
		return e, err
	}
	if linkNode != nil {
		e.href = nodeValue(linkNode, linkAttribute(rule))
	}

	if rule.Date != "" {
		n, err := htmlquery.Query(node, rule.Date)
		if err != nil {
			return e, err
		}
		if n != nil {
			e.date = nodeValue(n, rule.DateAttribute)
		}
	}

	if rule.Summary != "" {
		n, err := htmlquery.Query(node, rule.Summary)
		if err != nil {
			return e, err
		}
		if n != nil {
			e.summary = htmlquery.InnerText(n)
		}
	}

	return e, nil
}

// xpathLinkNode mirrors linkSelection for XPath documents.
func xpathLinkNode(node *html.Node, rule config.ScrapeRule) (*html.Node, error) {
	if rule.Link != "" {
		return htmlquery.Query(node, rule.Link)
	}
	for n := node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == "a" {
			return n, nil
		}
	}
	return htmlquery.Query(node, ".//a[@href]")
}

// nodeValue reads attr from an element, or its text when attr is empty.
// htmlquery returns "@name" selections as an element named after the
// attribute holding its value as text.
func nodeValue(n *html.Node, attr string) string {
	if attr == "" || (n.Data == attr && n.FirstChild != nil && n.FirstChild.Type == html.TextNode && len(n.Attr) == 0) {
		return htmlquery.InnerText(n)
	}
	return htmlquery.SelectAttr(n, attr)
}
