package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Books is the Book Store as seen by the API.
type Books interface {
	Add(ctx context.Context, title, author string) (models.Book, error)
	Get(ctx context.Context, id string) (models.Book, error)
	Advance(ctx context.Context, id string) (models.Book, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (models.Book, error)
	Delete(ctx context.Context, id string) (models.Book, error)
	Filter(ctx context.Context, f models.Filter) []models.Book
}

// Handler holds API route handlers.
type Handler struct {
	books Books
}

// NewHandler creates a new Handler.
func NewHandler(books Books) *Handler {
	return &Handler{books: books}
}

// writeStoreError maps a Book Store error to a response.
func writeStoreError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrStorage):
		slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to save data"))
	default:
		slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListBooks handles GET /api/books.
//
//	@Summary		List books, optionally filtered by status
//	@Tags			books
//	@Produce		json
//	@Param			filter	query		string	false	"Status filter"	Enums(all, to-read, reading, completed)
//	@Success		200		{object}	BookListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books [get]
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	f, err := models.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	books := h.books.Filter(r.Context(), f)
	resp := BookListResponse{
		Books:  make([]BookResponse, 0, len(books)),
		Filter: f.String(),
		Total:  len(books),
	}
	for _, b := range books {
		resp.Books = append(resp.Books, toBookResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBook handles GET /api/books/{id}.
//
//	@Summary		Get a single book
//	@Tags			books
//	@Produce		json
//	@Param			id	path		string	true	"Book id"
//	@Success		200	{object}	BookResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id} [get]
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.books.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get book", id, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(b))
}

// CreateBook handles POST /api/books.
//
//	@Summary		Add a book to the reading list
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateBookRequest	true	"Book to add"
//	@Success		201		{object}	BookResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books [post]
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if !readJSON(w, r, &req) {
		return
	}
	b, err := h.books.Add(r.Context(), req.Title, req.Author)
	if err != nil {
		writeStoreError(w, "add book", b.ID, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookResponse(b))
}

// AdvanceBook handles POST /api/books/{id}/advance.
//
//	@Summary		Move a book to the next status in the cycle
//	@Tags			books
//	@Produce		json
//	@Param			id	path		string	true	"Book id"
//	@Success		200	{object}	BookResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id}/advance [post]
func (h *Handler) AdvanceBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.books.Advance(r.Context(), id)
	if err != nil {
		writeStoreError(w, "advance book", id, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(b))
}

// UpdateStatus handles PUT /api/books/{id}/status.
//
//	@Summary		Set a book's status
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Book id"
//	@Param			body	body		UpdateStatusRequest	true	"New status"
//	@Success		200		{object}	BookResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id}/status [put]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateStatusRequest
	if !readJSON(w, r, &req) {
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	b, err := h.books.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeStoreError(w, "update status", id, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(b))
}

// DeleteBook handles DELETE /api/books/{id}.
//
//	@Summary		Delete a book
//	@Tags			books
//	@Param			id	path	string	true	"Book id"
//	@Success		204	"Book deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/books/{id} [delete]
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.books.Delete(r.Context(), id); err != nil {
		writeStoreError(w, "delete book", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStatuses handles GET /api/statuses.
//
//	@Summary		Describe the status cycle
//	@Tags			books
//	@Produce		json
//	@Success		200	{array}	StatusInfo
//	@Router			/statuses [get]
func (h *Handler) ListStatuses(w http.ResponseWriter, _ *http.Request) {
	out := make([]StatusInfo, 0, 3)
	for _, s := range models.Statuses() {
		out = append(out, StatusInfo{
			Status:      s.String(),
			Label:       s.Label(),
			ActionLabel: s.ActionLabel(),
			Next:        s.Next().String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
