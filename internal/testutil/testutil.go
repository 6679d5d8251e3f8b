// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/folio/internal/bookstore"
	"github.com/starford/folio/internal/storage"
)

// Logger discards everything below error.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestFS creates a temporary data directory with an FS provider.
func TestFS(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestStore creates a restored Book Store over kv, or over a fresh temporary
// FS provider when kv is nil.
func TestStore(t *testing.T, kv storage.Provider, opts ...bookstore.Option) *bookstore.Store {
	t.Helper()
	if kv == nil {
		_, kv = TestFS(t)
	}
	opts = append([]bookstore.Option{bookstore.WithLogger(Logger())}, opts...)
	s := bookstore.New(kv, opts...)
	s.Restore(context.Background())
	return s
}
