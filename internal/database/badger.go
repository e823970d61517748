package database

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens the embedded device store at path. An empty path opens
// an in-memory instance.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}

	slog.Info("opened badger store", "path", path, "in_memory", path == "")
	return db, nil
}
