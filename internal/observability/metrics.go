package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// Metrics tracks operational metrics for fetch runs.
type Metrics struct {
	// Source metrics
	SourcesRun    atomic.Int64
	SourcesFailed atomic.Int64
	FallbackRuns  atomic.Int64

	// Headline metrics
	HeadlinesFetched   atomic.Int64
	HeadlinesDropped   atomic.Int64
	HeadlinesDuplicate atomic.Int64
	HeadlinesStored    atomic.Int64
	HeadlinesExported  atomic.Int64

	// Run metrics
	LastRunTimestamp  atomic.Int64 // unix seconds
	LastRunDurationMs atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ObserveRun records the end of a run that started at start.
func (m *Metrics) ObserveRun(start time.Time) {
	m.LastRunTimestamp.Store(time.Now().Unix())
	m.LastRunDurationMs.Store(time.Since(start).Milliseconds())
}

type metric struct {
	name  string
	help  string
	kind  string
	value int64
}

func (m *Metrics) collect() []metric {
	return []metric{
		{"newsgoat_sources_run_total", "Total sources queried", "counter", m.SourcesRun.Load()},
		{"newsgoat_sources_failed_total", "Total sources that returned an error", "counter", m.SourcesFailed.Load()},
		{"newsgoat_fallback_runs_total", "Total runs that used fallback sources", "counter", m.FallbackRuns.Load()},
		{"newsgoat_headlines_fetched_total", "Total headlines fetched", "counter", m.HeadlinesFetched.Load()},
		{"newsgoat_headlines_dropped_total", "Total headlines dropped by the pipeline", "counter", m.HeadlinesDropped.Load()},
		{"newsgoat_headlines_duplicate_total", "Total duplicate headlines removed", "counter", m.HeadlinesDuplicate.Load()},
		{"newsgoat_headlines_stored_total", "New headlines written to the store", "counter", m.HeadlinesStored.Load()},
		{"newsgoat_headlines_exported_total", "Total headlines exported", "counter", m.HeadlinesExported.Load()},
		{"newsgoat_last_run_timestamp_seconds", "Unix time of the last completed run", "gauge", m.LastRunTimestamp.Load()},
		{"newsgoat_last_run_duration_milliseconds", "Duration of the last completed run", "gauge", m.LastRunDurationMs.Load()},
	}
}

// WriteTo writes metrics in Prometheus text exposition format.
func (m *Metrics) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, metric := range m.collect() {
		n, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n",
			metric.name, metric.help, metric.name, metric.kind, metric.name, metric.value)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteTextfile writes metrics to path for the node-exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".newsgoat-metrics-*")
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := m.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metrics file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename metrics file: %w", err)
	}

	m.logger.Debug("metrics textfile written", "path", path)
	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"sources_run":         m.SourcesRun.Load(),
		"sources_failed":      m.SourcesFailed.Load(),
		"fallback_runs":       m.FallbackRuns.Load(),
		"headlines_fetched":   m.HeadlinesFetched.Load(),
		"headlines_dropped":   m.HeadlinesDropped.Load(),
		"headlines_duplicate": m.HeadlinesDuplicate.Load(),
		"headlines_stored":    m.HeadlinesStored.Load(),
		"headlines_exported":  m.HeadlinesExported.Load(),
	}
}
