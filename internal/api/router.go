package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterOption configures optional API middleware.
type RouterOption func(*routerOptions)

type routerOptions struct {
	corsOrigins []string
	rps         float64
	burst       int
}

// WithCORS enables CORS for the given origins.
func WithCORS(origins []string) RouterOption {
	return func(o *routerOptions) { o.corsOrigins = origins }
}

// WithRateLimit caps the request rate. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) RouterOption {
	return func(o *routerOptions) {
		o.rps = rps
		o.burst = burst
	}
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(books Books, authEnabled bool, token string, sseHandler http.Handler, opts ...RouterOption) chi.Router {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}
	h := NewHandler(books)

	r := chi.NewRouter()
	if len(o.corsOrigins) > 0 {
		r.Use(CORSMiddleware(o.corsOrigins))
	}
	if o.rps > 0 {
		r.Use(RateLimitMiddleware(o.rps, o.burst))
	}
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/books", h.ListBooks)
	r.Post("/books", h.CreateBook)
	r.Get("/books/{id}", h.GetBook)
	r.Post("/books/{id}/advance", h.AdvanceBook)
	r.Put("/books/{id}/status", h.UpdateStatus)
	r.Delete("/books/{id}", h.DeleteBook)

	r.Get("/statuses", h.ListStatuses)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
