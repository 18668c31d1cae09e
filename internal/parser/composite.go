package parser

import (
	"log/slog"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// CompositeParser delegates to the CSS or XPath parser based on rule type.
type CompositeParser struct {
	css    *CSSParser
	xpath  *XPathParser
	logger *slog.Logger
}

// NewCompositeParser creates a parser that handles CSS and XPath rules.
func NewCompositeParser(logger *slog.Logger) *CompositeParser {
	return &CompositeParser{
		css:    NewCSSParser(logger),
		xpath:  NewXPathParser(logger),
		logger: logger.With("component", "composite_parser"),
	}
}

// Parse implements Parser. An empty rule type means CSS.
func (p *CompositeParser) Parse(resp *types.Response, rule config.ScrapeRule, source string, limit int) ([]types.Headline, error) {
	if rule.Type == "xpath" {
		return p.xpath.Parse(resp, rule, source, limit)
	}
	return p.css.Parse(resp, rule, source, limit)
}
