package ui

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Web serves the HTML reading list.
type Web struct {
	store    BookStore
	disp     *Dispatcher
	notifier *Notifier
	logger   *slog.Logger
}

// NewWeb creates the HTML surface.
func NewWeb(store BookStore, disp *Dispatcher, notifier *Notifier, logger *slog.Logger) *Web {
	if logger == nil {
		logger = slog.Default()
	}
	return &Web{store: store, disp: disp, notifier: notifier, logger: logger}
}

// Routes returns the page routes: GET / and POST /intent. Cross-site
// POSTs, judged by Sec-Fetch-Site or Origin, are refused with 403.
func (w *Web) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(http.NewCrossOriginProtection().Handler)
	r.Get("/", w.Index)
	r.Post("/intent", w.Intent)
	return r
}

// Index handles GET /?filter=&notice=. notice names the one notice produced
// by the intent that redirected here; other viewers' notices stay queued.
func (w *Web) Index(rw http.ResponseWriter, r *http.Request) {
	f, err := models.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		f = models.FilterAll
	}
	var notices []Notice
	if id := r.URL.Query().Get("notice"); id != "" && w.notifier != nil {
		if n, ok := w.notifier.Claim(id); ok {
			notices = append(notices, n)
		}
	}
	w.render(rw, r, http.StatusOK, f, nil, notices)
}

// Intent handles POST /intent with form fields action, id, title, author,
// filter and confirm.
func (w *Web) Intent(rw http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(rw, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		http.Error(rw, "invalid form", http.StatusBadRequest)
		return
	}
	in := Intent{
		Action:    Action(r.PostForm.Get("action")),
		ID:        r.PostForm.Get("id"),
		Title:     r.PostForm.Get("title"),
		Author:    r.PostForm.Get("author"),
		Filter:    r.PostForm.Get("filter"),
		Confirmed: r.PostForm.Get("confirm") == "yes",
	}

	res, err := w.disp.Dispatch(r.Context(), in)
	switch {
	case errors.Is(err, apperr.ErrUnknownAction):
		http.Error(rw, "unknown action", http.StatusBadRequest)
		return
	case errors.Is(err, apperr.ErrConfirmationRequired):
		card := NewCard(*res.Pending)
		w.render(rw, r, http.StatusOK, res.Filter, &card, nil)
		return
	}

	q := url.Values{"filter": {res.Filter.String()}}
	if res.Notice != nil && res.Notice.ID != "" {
		q.Set("notice", res.Notice.ID)
	}
	http.Redirect(rw, r, "/?"+q.Encode(), http.StatusSeeOther)
}

func (w *Web) render(rw http.ResponseWriter, r *http.Request, status int, f models.Filter, confirm *Card, notices []Notice) {
	page := BuildPage(w.store.Filter(r.Context(), f), f)
	page.Confirm = confirm
	page.Notices = notices
	if w.notifier != nil {
		page.NoticeTTL = w.notifier.TTL().Milliseconds()
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(status)
	if err := pageTmpl.Execute(rw, page); err != nil {
		w.logger.Error("render page failed", slog.String("error", err.Error()))
	}
}
