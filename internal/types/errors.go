package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNoSources         = errors.New("no sources selected")
	ErrEmptyResponse     = errors.New("empty response body")
	ErrInvalidURL        = errors.New("invalid URL")
	ErrMissingAPIKey     = errors.New("news API key not configured")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUnknownSource     = errors.New("unknown source")
)

// FetchError wraps errors that occur while retrieving a source.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s from %s (status %d): %v", e.Source, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s from %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps errors that occur while decoding HTML, JSON, or feeds.
type ParseError struct {
	Source   string
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("parse %s from %s (selector=%q): %v", e.Source, e.URL, e.Selector, e.Err)
	}
	return fmt.Sprintf("parse %s from %s: %v", e.Source, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SourceError records a source that failed during aggregation.
// It is non-fatal: the remaining sources still run.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur while saving or loading a dataset.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s %s): %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExportError wraps errors that occur while writing an export file.
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export error (%s to %s): %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("export error (%s): %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the cleaning pipeline.
type PipelineError struct {
	Stage    string
	Headline *Headline
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
