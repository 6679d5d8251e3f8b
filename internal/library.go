package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/folio/internal/bookstore"
	"github.com/starford/folio/internal/storage"
)

// Library is a restored Book Store together with the backend it persists to.
type Library struct {
	Store *bookstore.Store

	kv       storage.Provider
	slotPath string
	close    func() error
}

// OpenLibrary opens the configured backend and restores the Book Store from
// it. The caller owns the result and must Close it.
func OpenLibrary(ctx context.Context, cfg StorageConfig, logger *slog.Logger, opts ...bookstore.Option) (*Library, error) {
	lib := &Library{close: func() error { return nil }}

	var kv storage.Provider
	switch cfg.Backend {
	case BackendFile, "":
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		slot, err := fs.Path(cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		lib.slotPath = slot
		kv = fs

	case BackendSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		db, err := storage.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		lib.close = db.Close
		kv = db

	case BackendMemory:
		kv = storage.NewMemory()

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	opts = append([]bookstore.Option{
		bookstore.WithKey(cfg.Key),
		bookstore.WithLogger(logger),
	}, opts...)
	lib.kv = kv
	lib.Store = bookstore.New(kv, opts...)
	lib.Store.Restore(ctx)

	logger.Debug("library opened",
		slog.String("backend", cfg.Backend),
		slog.String("key", cfg.Key),
		slog.Int("books", lib.Store.Len()))
	return lib, nil
}

// SlotPath returns the file holding the reading list, or "" when the backend
// is not file based.
func (l *Library) SlotPath() string { return l.slotPath }

// Watchable reports whether external edits can be observed.
func (l *Library) Watchable() bool { return l.slotPath != "" }

// Slots lists the keys present in the backend. Each key is a separate
// reading list; the configured one is selected with storage.key.
func (l *Library) Slots() ([]string, error) {
	keys, err := l.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return keys, nil
}

// Close releases the backend.
func (l *Library) Close() error { return l.close() }
