package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// Middleware processes a headline and returns the (possibly modified) headline.
// Return nil to drop the headline from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a headline. Return nil to drop it.
	Process(h *types.Headline) (*types.Headline, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Default returns the cleaning chain applied to every fetched headline:
// trim, sanitize, require a title, and fill a missing source.
func Default(logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(&TrimMiddleware{})
	p.Use(NewHTMLSanitizeMiddleware())
	p.Use(&RequiredFieldsMiddleware{Fields: []string{"title"}})
	p.Use(&SourceDefaultMiddleware{})
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the headline through all middleware in order.
func (p *Pipeline) Process(h *types.Headline) (*types.Headline, error) {
	current := h

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:    mw.Name(),
				Headline: current,
				Err:      err,
			}
		}
		if result == nil {
			p.logger.Debug("headline dropped", "stage", mw.Name(), "url", h.URL)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
