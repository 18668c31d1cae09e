package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/newsgoat/internal/observability"
	"github.com/IshaanNene/newsgoat/internal/pipeline"
	"github.com/IshaanNene/newsgoat/internal/source"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// State represents the engine's current lifecycle state.
type State int32

const (
	StateIdle    State = 0
	StateRunning State = 1
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Stats tracks statistics for one run.
type Stats struct {
	SourcesRun       atomic.Int64
	SourcesFailed    atomic.Int64
	HeadlinesFetched atomic.Int64
	HeadlinesDropped atomic.Int64
	Duplicates       atomic.Int64
	FallbackUsed     atomic.Bool
	StartTime        time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"sources_run":       s.SourcesRun.Load(),
		"sources_failed":    s.SourcesFailed.Load(),
		"headlines_fetched": s.HeadlinesFetched.Load(),
		"headlines_dropped": s.HeadlinesDropped.Load(),
		"duplicates":        s.Duplicates.Load(),
		"fallback_used":     s.FallbackUsed.Load(),
		"elapsed":           time.Since(s.StartTime).String(),
	}
}

// Options control one run.
type Options struct {
	// Limit is passed to every source. <= 0 uses each source's default.
	Limit int

	// ByURL also drops headlines whose canonical URL was already kept.
	ByURL bool
}

// Result is the outcome of a run.
type Result struct {
	// Records is the deduplicated dataset: existing records first, then
	// newly fetched ones in source order.
	Records []types.Headline

	// Added counts fetched headlines that survived deduplication.
	Added int

	Fetched    int
	Dropped    int
	Duplicates int

	// Errors holds one *types.SourceError per failed source.
	Errors []error

	FallbackUsed bool
}

// Engine fetches from a source selection, cleans the results, and merges
// them into an existing dataset.
type Engine struct {
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	metrics  *observability.Metrics

	state atomic.Int32
	stats *Stats
}

// New creates a new Engine. metrics may be nil.
func New(logger *slog.Logger, p *pipeline.Pipeline, metrics *observability.Metrics) *Engine {
	if p == nil {
		p = pipeline.Default(logger)
	}
	return &Engine{
		logger:   logger.With("component", "engine"),
		pipeline: p,
		metrics:  metrics,
		stats:    &Stats{},
	}
}

// Run queries every primary source in order, then the fallback sources
// when the primaries produced nothing. A failing source is recorded in
// Result.Errors and the run continues. Only context cancellation aborts
// the run.
func (e *Engine) Run(ctx context.Context, sel source.Selection, existing []types.Headline, opts Options) (*Result, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, fmt.Errorf("engine is in state %s, cannot start", State(e.state.Load()))
	}
	defer e.state.Store(int32(StateIdle))

	if sel.Empty() {
		return nil, types.ErrNoSources
	}

	e.stats = &Stats{StartTime: time.Now()}
	e.logger.Info("run starting",
		"sources", sel.Names(),
		"limit", opts.Limit,
		"existing", len(existing),
	)

	res := &Result{}
	fetched, err := e.runSources(ctx, sel.Primary, opts, res)
	if err != nil {
		return nil, err
	}

	if len(fetched) == 0 && len(sel.Fallback) > 0 {
		e.logger.Info("primary sources returned nothing, using fallback", "fallback", len(sel.Fallback))
		res.FallbackUsed = true
		e.stats.FallbackUsed.Store(true)
		fetched, err = e.runSources(ctx, sel.Fallback, opts, res)
		if err != nil {
			return nil, err
		}
	}

	combined := make([]types.Headline, 0, len(existing)+len(fetched))
	combined = append(combined, existing...)
	combined = append(combined, fetched...)

	// Existing records are deduplicated too so a legacy dataset converges.
	res.Records, res.Duplicates = Dedupe(combined, opts.ByURL)
	res.Added = max(len(res.Records)-len(existing), 0)
	e.stats.Duplicates.Store(int64(res.Duplicates))

	e.mirror(res)
	e.logger.Info("run finished",
		"added", res.Added,
		"total", len(res.Records),
		"stats", e.stats.Snapshot(),
	)
	return res, nil
}

// runSources fetches each source in turn and runs its headlines through
// the pipeline.
func (e *Engine) runSources(ctx context.Context, sources []source.Source, opts Options, res *Result) ([]types.Headline, error) {
	var out []types.Headline
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.stats.SourcesRun.Add(1)
		headlines, err := src.Fetch(ctx, opts.Limit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return nil, ctxErr
			}
			e.stats.SourcesFailed.Add(1)
			res.Errors = append(res.Errors, &types.SourceError{Source: src.Name(), Err: err})
			e.logger.Error("source failed", "source", src.Name(), "error", err)
		}

		res.Fetched += len(headlines)
		e.stats.HeadlinesFetched.Add(int64(len(headlines)))

		for i := range headlines {
			h := headlines[i]
			processed, perr := e.pipeline.Process(&h)
			if perr != nil {
				e.logger.Warn("pipeline rejected headline", "source", src.Name(), "error", perr)
			}
			if processed == nil {
				res.Dropped++
				e.stats.HeadlinesDropped.Add(1)
				continue
			}
			if processed.FetchedAt.IsZero() {
				processed.FetchedAt = time.Now().UTC()
			}
			out = append(out, *processed)
		}
	}
	return out, nil
}

func (e *Engine) mirror(res *Result) {
	if e.metrics == nil {
		return
	}
	e.metrics.SourcesRun.Add(e.stats.SourcesRun.Load())
	e.metrics.SourcesFailed.Add(e.stats.SourcesFailed.Load())
	e.metrics.HeadlinesFetched.Add(int64(res.Fetched))
	e.metrics.HeadlinesDropped.Add(int64(res.Dropped))
	e.metrics.HeadlinesDuplicate.Add(int64(res.Duplicates))
	if res.FallbackUsed {
		e.metrics.FallbackRuns.Add(1)
	}
	e.metrics.ObserveRun(e.stats.StartTime)
}

// Stats returns the statistics of the last run.
func (e *Engine) Stats() *Stats {
	return e.stats
}
