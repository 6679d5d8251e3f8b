package ui

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/testutil"
)

type brokenKV struct{ storage.Provider }

func (brokenKV) Set(string, []byte) error { return errors.New("quota exceeded") }

func newDispatcher(t *testing.T, kv storage.Provider) (*Dispatcher, BookStore, *Notifier) {
	t.Helper()
	store := testutil.TestStore(t, kv)
	n := NewNotifier(DefaultNoticeTTL, nil)
	return NewDispatcher(store, n, testutil.Logger()), store, n
}

func TestDispatchAdd(t *testing.T) {
	d, store, _ := newDispatcher(t, nil)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, Intent{Action: ActionAdd, Title: "Dune", Author: "Herbert"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Book == nil || res.Book.Status != models.StatusToRead {
		t.Fatalf("book = %+v", res.Book)
	}
	if res.Notice == nil || res.Notice.Kind != NoticeSuccess {
		t.Errorf("notice = %+v", res.Notice)
	}
	if got := store.Filter(ctx, models.FilterAll); len(got) != 1 {
		t.Errorf("len = %d", len(got))
	}
}

func TestDispatchAddValidation(t *testing.T) {
	d, store, _ := newDispatcher(t, nil)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, Intent{Action: ActionAdd, Title: " ", Author: "Herbert"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	if res.Notice == nil || res.Notice.Kind != NoticeError || res.Notice.Message != "Please fill in title and author" {
		t.Errorf("notice = %+v", res.Notice)
	}
	if got := store.Filter(ctx, models.FilterAll); len(got) != 0 {
		t.Errorf("collection changed: %+v", got)
	}
}

func TestDispatchAdvanceLabels(t *testing.T) {
	d, _, _ := newDispatcher(t, nil)
	ctx := context.Background()
	res, _ := d.Dispatch(ctx, Intent{Action: ActionAdd, Title: "Dune", Author: "Herbert"})
	id := res.Book.ID

	want := []string{`Marked as "Reading"`, `Marked as "Completed"`, `Marked as "To read"`}
	for _, msg := range want {
		res, err := d.Dispatch(ctx, Intent{Action: ActionAdvance, ID: id})
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if res.Notice.Message != msg {
			t.Errorf("notice = %q, want %q", res.Notice.Message, msg)
		}
	}
}

func TestDispatchDeleteNeedsConfirmation(t *testing.T) {
	d, store, _ := newDispatcher(t, nil)
	ctx := context.Background()
	res, _ := d.Dispatch(ctx, Intent{Action: ActionAdd, Title: "Dune", Author: "Herbert"})
	id := res.Book.ID

	res, err := d.Dispatch(ctx, Intent{Action: ActionDelete, ID: id})
	if !errors.Is(err, apperr.ErrConfirmationRequired) {
		t.Fatalf("err = %v", err)
	}
	if res.Pending == nil || res.Pending.ID != id {
		t.Fatalf("pending = %+v", res.Pending)
	}
	if got := store.Filter(ctx, models.FilterAll); len(got) != 1 {
		t.Fatalf("unconfirmed delete removed the book")
	}

	res, err = d.Dispatch(ctx, Intent{Action: ActionDelete, ID: id, Confirmed: true})
	if err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if res.Notice == nil || res.Notice.Kind != NoticeInfo {
		t.Errorf("notice = %+v", res.Notice)
	}
	if got := store.Filter(ctx, models.FilterAll); len(got) != 0 {
		t.Errorf("book still listed: %+v", got)
	}
}

func TestDispatchUnknownID(t *testing.T) {
	d, _, _ := newDispatcher(t, nil)
	ctx := context.Background()

	for _, in := range []Intent{
		{Action: ActionAdvance, ID: "nope"},
		{Action: ActionDelete, ID: "nope"},
		{Action: ActionDelete, ID: "nope", Confirmed: true},
	} {
		res, err := d.Dispatch(ctx, in)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%+v: err = %v", in, err)
		}
		if res.Notice == nil || res.Notice.Message != "Book not found" {
			t.Errorf("%+v: notice = %+v", in, res.Notice)
		}
	}
}

func TestDispatchStorageFailure(t *testing.T) {
	d, store, n := newDispatcher(t, brokenKV{storage.NewMemory()})
	ctx := context.Background()

	res, err := d.Dispatch(ctx, Intent{Action: ActionAdd, Title: "Dune", Author: "Herbert"})
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("err = %v", err)
	}
	if res.Notice == nil || res.Notice.Message != "Failed to save data" {
		t.Errorf("notice = %+v", res.Notice)
	}
	if got := store.Filter(ctx, models.FilterAll); len(got) != 1 {
		t.Errorf("book not kept in memory")
	}
	if taken := n.Take(); len(taken) != 1 || taken[0].Kind != NoticeError {
		t.Errorf("queued notices = %+v", taken)
	}
}

func TestDispatchFilter(t *testing.T) {
	d, _, _ := newDispatcher(t, nil)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, Intent{Action: ActionFilter, Filter: "completed"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if res.Filter.String() != "completed" {
		t.Errorf("filter = %s", res.Filter)
	}
	if res.Notice != nil {
		t.Errorf("filter change should not notify")
	}

	res, err = d.Dispatch(ctx, Intent{Action: ActionFilter, Filter: "bogus"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bogus filter err = %v", err)
	}
	if res.Notice == nil || res.Notice.Kind != NoticeError || res.Notice.Message != "Unknown filter" {
		t.Errorf("bogus filter notice = %+v", res.Notice)
	}
	if res.Filter != models.FilterAll {
		t.Errorf("bogus filter = %s, want all", res.Filter)
	}
}

func TestDispatchKeepsCurrentFilter(t *testing.T) {
	d, _, _ := newDispatcher(t, nil)
	res, _ := d.Dispatch(context.Background(), Intent{Action: ActionAdd, Title: "A", Author: "B", Filter: "reading"})
	if res.Filter.String() != "reading" {
		t.Errorf("filter = %s, want reading", res.Filter)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	d, _, _ := newDispatcher(t, nil)
	if _, err := d.Dispatch(context.Background(), Intent{Action: "archive"}); !errors.Is(err, apperr.ErrUnknownAction) {
		t.Errorf("err = %v", err)
	}
}

func TestActions(t *testing.T) {
	d, _, _ := newDispatcher(t, nil)
	got := d.Actions()
	want := []Action{ActionAdd, ActionAdvance, ActionDelete, ActionFilter}
	if len(got) != len(want) {
		t.Fatalf("actions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("actions[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
