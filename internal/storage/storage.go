package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// Store is the interface for all storage backends. A store holds one
// ordered dataset of headlines.
type Store interface {
	// Save replaces the stored dataset with records, keeping their order.
	Save(ctx context.Context, records []types.Headline) error

	// Load returns the stored dataset in saved order. An uninitialized
	// store loads as empty.
	Load(ctx context.Context) ([]types.Headline, error)

	// Close releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New opens the backend selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(cfg.Type) {
	case "json":
		return NewJSONStore(cfg.Path, logger)
	case "sqlite", "":
		return NewSQLiteStore(ctx, cfg.Path, logger)
	case "mongodb", "mongo":
		return NewMongoStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: storage type %q", types.ErrUnsupportedFormat, cfg.Type)
	}
}

func storageErr(backend, op string, err error) error {
	return &types.StorageError{Backend: backend, Op: op, Err: err}
}
