// Package bookstore holds the in-memory reading list and keeps it persisted
// in a named slot of a storage.Provider.
package bookstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// DefaultKey is the slot holding the serialized collection.
const DefaultKey = "readingBooks"

// Change kinds reported to observers.
const (
	ChangeAdded    = "added"
	ChangeUpdated  = "updated"
	ChangeDeleted  = "deleted"
	ChangeReloaded = "reloaded"
)

// Observer is called after each applied mutation, while the store lock is
// held; it must not call back into the Store. For ChangeReloaded the book is
// the zero value.
type Observer func(kind string, b models.Book)

// Store is the reading list. Every operation runs to completion under one
// lock, so intents from concurrent request handlers are applied one at a time.
type Store struct {
	mu      sync.Mutex
	kv      storage.Provider
	key     string
	books   []models.Book
	lastSum string

	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	observer Observer
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage slot name.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source for AddedDate.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the id source for new books.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithObserver registers a change callback.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// New creates an empty store backed by kv. Call Restore to load the
// persisted collection.
func New(kv storage.Provider, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage slot name.
func (s *Store) Key() string { return s.key }

// Add validates and appends a new book in StatusToRead, then persists.
// A returned error matching apperr.ErrStorage means the book was added in
// memory but could not be saved.
func (s *Store) Add(_ context.Context, title, author string) (models.Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	s.mu.Lock()
	defer s.mu.Unlock()

	b := models.Book{
		ID:        s.newID(),
		Title:     title,
		Author:    author,
		Status:    models.StatusToRead,
		AddedDate: s.now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return models.Book{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if s.indexOf(b.ID) >= 0 {
		return models.Book{}, fmt.Errorf("%w: duplicate id %s", apperr.ErrValidation, b.ID)
	}

	s.books = append(s.books, b)
	err := s.persistLocked()
	s.notify(ChangeAdded, b)
	return b, err
}

// UpdateStatus sets the status of the book with id and persists.
func (s *Store) UpdateStatus(_ context.Context, id string, status models.Status) (models.Book, error) {
	if err := status.Validate(); err != nil {
		return models.Book{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Book{}, fmt.Errorf("%w: book %s", apperr.ErrNotFound, id)
	}
	s.books[i].Status = status
	b := s.books[i]
	err := s.persistLocked()
	s.notify(ChangeUpdated, b)
	return b, err
}

// Advance moves the book with id to the next status in its cycle.
func (s *Store) Advance(_ context.Context, id string) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Book{}, fmt.Errorf("%w: book %s", apperr.ErrNotFound, id)
	}
	s.books[i].Status = s.books[i].Status.Next()
	b := s.books[i]
	err := s.persistLocked()
	s.notify(ChangeUpdated, b)
	return b, err
}

// Delete removes the book with id and persists. It returns the removed book.
func (s *Store) Delete(_ context.Context, id string) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Book{}, fmt.Errorf("%w: book %s", apperr.ErrNotFound, id)
	}
	b := s.books[i]
	s.books = slices.Delete(s.books, i, i+1)
	err := s.persistLocked()
	s.notify(ChangeDeleted, b)
	return b, err
}

// Get returns the book with id.
func (s *Store) Get(_ context.Context, id string) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Book{}, fmt.Errorf("%w: book %s", apperr.ErrNotFound, id)
	}
	return s.books[i], nil
}

// Filter returns the books matching f in insertion order. The result is a
// copy and never aliases the collection.
func (s *Store) Filter(_ context.Context, f models.Filter) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

// Persist writes the full collection to the slot.
func (s *Store) Persist(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Reset empties the collection and removes its slot from storage. Observers
// see it as a reload.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(s.key); err != nil {
		s.logger.Error("bookstore: reset failed", slog.String("key", s.key), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	s.books = nil
	s.lastSum = checksum(nil)
	s.notify(ChangeReloaded, models.Book{})
	return nil
}

// Restore replaces the collection with the slot contents. Absent or invalid
// data yields an empty collection; the cause is logged, never returned.
func (s *Store) Restore(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(s.key)
	if err != nil {
		s.books = nil
		s.lastSum = ""
		if errors.Is(err, storage.ErrKeyNotFound) {
			s.lastSum = checksum(nil)
			s.logger.Debug("bookstore: no saved books", slog.String("key", s.key))
			return
		}
		s.logger.Warn("bookstore: load failed", slog.String("key", s.key), slog.String("error", err.Error()))
		return
	}
	s.loadLocked(data)
}

// Refresh reloads the slot when its contents differ from what this store
// last wrote or read. It reports whether a reload happened.
func (s *Store) Refresh(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(s.key)
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return false, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if checksum(data) == s.lastSum {
		return false, nil
	}
	if data == nil {
		s.books = nil
		s.lastSum = checksum(nil)
	} else {
		s.loadLocked(data)
	}
	s.notify(ChangeReloaded, models.Book{})
	return true, nil
}

func (s *Store) loadLocked(data []byte) {
	s.lastSum = checksum(data)
	books, err := decode(data)
	if err != nil {
		s.books = nil
		s.logger.Warn("bookstore: saved books unreadable, starting empty",
			slog.String("key", s.key), slog.String("error", err.Error()))
		return
	}
	s.books = books
}

func (s *Store) persistLocked() error {
	data, err := encode(s.books)
	if err != nil {
		s.logger.Error("bookstore: encode failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: encode: %v", apperr.ErrStorage, err)
	}
	if err := s.kv.Set(s.key, data); err != nil {
		s.logger.Error("bookstore: save failed", slog.String("key", s.key), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	s.lastSum = checksum(data)
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.books, func(b models.Book) bool { return b.ID == id })
}

func (s *Store) notify(kind string, b models.Book) {
	if s.observer != nil {
		s.observer(kind, b)
	}
}
