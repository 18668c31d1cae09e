package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/newsgoat/internal/types"
)

// JSONStore keeps the dataset as an indented JSON array in a single file.
type JSONStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewJSONStore creates a JSON file store. The file is created on first Save.
func NewJSONStore(path string, logger *slog.Logger) (*JSONStore, error) {
	if path == "" {
		return nil, storageErr("json", "open", errors.New("path is empty"))
	}
	return &JSONStore{
		path:   path,
		logger: logger.With("component", "json_store"),
	}, nil
}

func (s *JSONStore) Name() string { return "json" }

// Save writes to a temp file, then renames it over the dataset.
func (s *JSONStore) Save(ctx context.Context, records []types.Headline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storageErr("json", "save", fmt.Errorf("create dir: %w", err))
	}

	f, err := os.CreateTemp(dir, ".newsgoat-*.json")
	if err != nil {
		return storageErr("json", "save", fmt.Errorf("create temp file: %w", err))
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)

	if records == nil {
		records = []types.Headline{}
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		f.Close()
		return storageErr("json", "save", fmt.Errorf("encode: %w", err))
	}
	if err := f.Close(); err != nil {
		return storageErr("json", "save", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return storageErr("json", "save", fmt.Errorf("rename: %w", err))
	}

	s.logger.Debug("dataset saved", "path", s.path, "records", len(records))
	return nil
}

func (s *JSONStore) Load(ctx context.Context) ([]types.Headline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Headline{}, nil
		}
		return nil, storageErr("json", "load", err)
	}
	defer f.Close()

	var records []types.Headline
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return []types.Headline{}, nil
		}
		return nil, storageErr("json", "load", fmt.Errorf("decode %s: %w", s.path, err))
	}
	if records == nil {
		records = []types.Headline{}
	}
	return records, nil
}

func (s *JSONStore) Close() error { return nil }
