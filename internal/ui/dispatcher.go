// Package ui is the presentation layer: it turns user intents into Book Store
// operations, reports outcomes as transient notices, and renders the filtered
// list for the web page and the terminal.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// BookStore is the part of the Book Store the presentation layer drives.
type BookStore interface {
	Add(ctx context.Context, title, author string) (models.Book, error)
	Advance(ctx context.Context, id string) (models.Book, error)
	Delete(ctx context.Context, id string) (models.Book, error)
	Get(ctx context.Context, id string) (models.Book, error)
	Filter(ctx context.Context, f models.Filter) []models.Book
}

// Action names a user intent.
type Action string

const (
	ActionAdd     Action = "add"
	ActionAdvance Action = "advance"
	ActionDelete  Action = "delete"
	ActionFilter  Action = "filter"
)

// Intent is a user request as reported by a surface.
type Intent struct {
	Action    Action
	ID        string
	Title     string
	Author    string
	Filter    string // current or requested filter token
	Confirmed bool   // delete only
}

// Result describes what an intent did.
type Result struct {
	Filter  models.Filter
	Book    *models.Book // book added, advanced or deleted
	Pending *models.Book // delete awaiting confirmation
	Notice  *Notice
}

type handler func(ctx context.Context, in Intent, res *Result) error

// Dispatcher maps action names to handlers.
type Dispatcher struct {
	store    BookStore
	notifier *Notifier
	logger   *slog.Logger
	handlers map[Action]handler
}

// NewDispatcher creates a dispatcher over store. Notices go to notifier.
func NewDispatcher(store BookStore, notifier *Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{store: store, notifier: notifier, logger: logger}
	d.handlers = map[Action]handler{
		ActionAdd:     d.add,
		ActionAdvance: d.advance,
		ActionDelete:  d.delete,
		ActionFilter:  d.filter,
	}
	return d
}

// Actions lists the registered action names.
func (d *Dispatcher) Actions() []Action {
	out := make([]Action, 0, len(d.handlers))
	for a := range d.handlers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch runs the handler registered for in.Action. A delete without
// confirmation returns an error matching apperr.ErrConfirmationRequired with
// Result.Pending set and leaves the list unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, in Intent) (Result, error) {
	h, ok := d.handlers[in.Action]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", apperr.ErrUnknownAction, in.Action)
	}

	// The current filter rides along with every intent; an unreadable one
	// falls back to all books except when it is the thing being changed.
	res := Result{Filter: models.FilterAll}
	if f, err := models.ParseFilter(in.Filter); err == nil {
		res.Filter = f
	}

	err := h(ctx, in, &res)
	if err != nil && !errors.Is(err, apperr.ErrConfirmationRequired) {
		d.logger.Debug("intent failed",
			slog.String("action", string(in.Action)),
			slog.String("id", in.ID),
			slog.String("error", err.Error()))
	}
	return res, err
}

func (d *Dispatcher) add(ctx context.Context, in Intent, res *Result) error {
	b, err := d.store.Add(ctx, in.Title, in.Author)
	switch {
	case err == nil:
		res.Book = &b
		d.notify(res, NoticeSuccess, "Book added")
	case errors.Is(err, apperr.ErrValidation):
		d.notify(res, NoticeError, "Please fill in title and author")
	case errors.Is(err, apperr.ErrStorage):
		res.Book = &b
		d.notify(res, NoticeError, "Failed to save data")
	default:
		d.notify(res, NoticeError, "Could not add book")
	}
	return err
}

func (d *Dispatcher) advance(ctx context.Context, in Intent, res *Result) error {
	b, err := d.store.Advance(ctx, in.ID)
	switch {
	case err == nil:
		res.Book = &b
		d.notify(res, NoticeSuccess, fmt.Sprintf("Marked as %q", b.Status.Label()))
	case errors.Is(err, apperr.ErrNotFound):
		d.notify(res, NoticeError, "Book not found")
	case errors.Is(err, apperr.ErrStorage):
		res.Book = &b
		d.notify(res, NoticeError, "Failed to save data")
	default:
		d.notify(res, NoticeError, "Could not update book")
	}
	return err
}

func (d *Dispatcher) delete(ctx context.Context, in Intent, res *Result) error {
	if !in.Confirmed {
		b, err := d.store.Get(ctx, in.ID)
		if err != nil {
			d.notify(res, NoticeError, "Book not found")
			return err
		}
		res.Pending = &b
		return fmt.Errorf("%w: delete %s", apperr.ErrConfirmationRequired, in.ID)
	}

	b, err := d.store.Delete(ctx, in.ID)
	switch {
	case err == nil:
		res.Book = &b
		d.notify(res, NoticeInfo, "Book deleted")
	case errors.Is(err, apperr.ErrNotFound):
		d.notify(res, NoticeError, "Book not found")
	case errors.Is(err, apperr.ErrStorage):
		res.Book = &b
		d.notify(res, NoticeError, "Failed to save data")
	default:
		d.notify(res, NoticeError, "Could not delete book")
	}
	return err
}

func (d *Dispatcher) filter(_ context.Context, in Intent, res *Result) error {
	f, err := models.ParseFilter(in.Filter)
	if err != nil {
		d.notify(res, NoticeError, "Unknown filter")
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	res.Filter = f
	return nil
}

func (d *Dispatcher) notify(res *Result, kind, message string) {
	var n Notice
	if d.notifier != nil {
		n = d.notifier.Push(kind, message)
	} else {
		n = Notice{Kind: kind, Message: message}
	}
	res.Notice = &n
}
