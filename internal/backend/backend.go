// Package backend selects and constructs the document store the
// services persist through.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kevenbotelho/controle-pessoal/internal/storage"
	"github.com/kevenbotelho/controle-pessoal/internal/storage/memory"
)

// Store is the persistence surface the services depend on: a mapping
// from a storage key to an opaque JSON document.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	return t == SQLiteBackend || t == MemoryBackend
}

// Config carries what the factory needs to build a store.
type Config struct {
	Type         Type
	SQLiteDBPath string
}

// New constructs the configured store.
func New(logger *slog.Logger, cfg Config) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	default:
		logger.Info("Initialized memory backend")
		return memory.New(), nil
	}
}
