// Package source defines where headlines come from: scraped front pages,
// RSS/Atom feeds, and the NewsAPI service.
package source

import (
	"context"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// Source produces headlines from one outlet or service.
type Source interface {
	// Name identifies the source in logs, errors, and the CLI.
	Name() string

	// Kind is "scrape", "rss", or "newsapi".
	Kind() string

	// Fetch returns up to limit headlines. A limit <= 0 means the
	// source's own default.
	Fetch(ctx context.Context, limit int) ([]types.Headline, error)
}

// Selection is the set of sources chosen for one fetch run.
// Fallback sources run only when every primary source came back empty.
type Selection struct {
	Primary  []Source
	Fallback []Source
}

// Empty reports whether the selection contains no sources at all.
func (s Selection) Empty() bool {
	return len(s.Primary) == 0 && len(s.Fallback) == 0
}

// Names lists the primary then fallback source names.
func (s Selection) Names() []string {
	names := make([]string, 0, len(s.Primary)+len(s.Fallback))
	for _, src := range s.Primary {
		names = append(names, src.Name())
	}
	for _, src := range s.Fallback {
		names = append(names, src.Name())
	}
	return names
}
