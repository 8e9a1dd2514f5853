// Package factory builds the configured store and blob adapters.
package factory

import (
	"fmt"

	"fintrack/internal/backend"
	"fintrack/internal/backend/fsblob"
	"fintrack/internal/backend/memory"
	"fintrack/internal/backend/sqlite"
	"fintrack/internal/config"
)

// Result bundles the adapters with a cleanup hook for the owning command.
type Result struct {
	Store   backend.Store
	Blobs   backend.BlobStore
	Cleanup func() error
}

// Build constructs the backend selected by cfg.DataBackend.
func Build(cfg *config.Config) (*Result, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		return &Result{
			Store:   memory.NewStore(),
			Blobs:   memory.NewBlobs(),
			Cleanup: func() error { return nil },
		}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		blobs, err := fsblob.New(cfg.BlobDir, cfg.BlobBaseURL, []byte(cfg.BlobSecret))
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		return &Result{Store: store, Blobs: blobs, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
