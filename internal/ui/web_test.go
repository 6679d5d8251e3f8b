package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/testutil"
)

func newTestWeb(t *testing.T) (http.Handler, BookStore) {
	t.Helper()
	store := testutil.TestStore(t, nil)
	n := NewNotifier(DefaultNoticeTTL, nil)
	d := NewDispatcher(store, n, testutil.Logger())
	return NewWeb(store, d, n, testutil.Logger()).Routes(), store
}

func postForm(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/intent", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebIndexEmptyState(t *testing.T) {
	h, _ := newTestWeb(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="emptyState"`) {
		t.Error("empty state not rendered")
	}
	if strings.Contains(body, `id="booksList"`) {
		t.Error("list rendered for empty collection")
	}
}

func TestWebAddRedirectsAndShowsNotice(t *testing.T) {
	h, store := newTestWeb(t)

	rec := postForm(h, url.Values{"action": {"add"}, "title": {"Dune"}, "author": {"Herbert"}, "filter": {"reading"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/?filter=reading&notice=") {
		t.Fatalf("location = %q", loc)
	}
	if got := store.Filter(context.Background(), models.FilterAll); len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}

	// Another viewer loading the page does not consume the notice.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Contains(rec.Body.String(), "Book added") {
		t.Error("notice shown to a page without its id")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, loc, nil))
	body := rec.Body.String()
	for _, want := range []string{"Dune", "Herbert", "To read", "Start", "Book added"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	// Reloading the same location shows the notice once.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, loc, nil))
	if strings.Contains(rec.Body.String(), "Book added") {
		t.Error("notice shown twice")
	}
}

func TestWebFilterHidesOthers(t *testing.T) {
	h, store := newTestWeb(t)
	ctx := context.Background()
	dune, _ := store.Add(ctx, "Dune", "Herbert")
	if _, err := store.Add(ctx, "Emma", "Austen"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Advance(ctx, dune.ID); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?filter=reading", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "Dune") || strings.Contains(body, "Emma") {
		t.Errorf("filter=reading rendered wrong books")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?filter=completed", nil))
	if !strings.Contains(rec.Body.String(), `id="emptyState"`) {
		t.Error("completed filter should show empty state")
	}
}

func TestWebDeleteAsksForConfirmation(t *testing.T) {
	h, store := newTestWeb(t)
	ctx := context.Background()
	b, _ := store.Add(ctx, "Dune", "Herbert")

	rec := postForm(h, url.Values{"action": {"delete"}, "id": {b.ID}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="confirm"`) {
		t.Error("confirmation prompt not rendered")
	}
	if got := store.Filter(ctx, models.FilterAll); len(got) != 1 {
		t.Fatal("book deleted without confirmation")
	}

	rec = postForm(h, url.Values{"action": {"delete"}, "id": {b.ID}, "confirm": {"yes"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("confirmed status = %d", rec.Code)
	}
	if got := store.Filter(ctx, models.FilterAll); len(got) != 0 {
		t.Error("book still present")
	}
}

func TestWebUnknownAction(t *testing.T) {
	h, _ := newTestWeb(t)
	rec := postForm(h, url.Values{"action": {"archive"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebRejectsCrossOriginIntent(t *testing.T) {
	h, store := newTestWeb(t)
	form := url.Values{"action": {"add"}, "title": {"Dune"}, "author": {"Herbert"}}

	cases := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"foreign origin", "Origin", "https://evil.example", http.StatusForbidden},
		{"cross-site fetch", "Sec-Fetch-Site", "cross-site", http.StatusForbidden},
		{"same origin", "Origin", "http://example.com", http.StatusSeeOther},
		{"same-origin fetch", "Sec-Fetch-Site", "same-origin", http.StatusSeeOther},
	}
	added := 0
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/intent", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.Header.Set(tc.header, tc.value)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusSeeOther {
				added++
			}
			if got := len(store.Filter(context.Background(), models.FilterAll)); got != added {
				t.Errorf("books = %d, want %d", got, added)
			}
		})
	}
}
