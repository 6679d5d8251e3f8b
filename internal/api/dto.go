package api

import (
	"time"

	"github.com/starford/folio/internal/models"
)

// CreateBookRequest is the request body for adding a book.
type CreateBookRequest struct {
	Title  string `json:"title" example:"Dune" validate:"required"`
	Author string `json:"author" example:"Frank Herbert" validate:"required"`
}

// UpdateStatusRequest is the request body for setting a book's status.
type UpdateStatusRequest struct {
	Status string `json:"status" example:"reading" validate:"required"`
}

// BookResponse is a book plus the labels a client needs to render it.
type BookResponse struct {
	ID          string    `json:"id" example:"3f0c2a4e-6a43-4d8f-9b3e-2d9f6c1f8a10" validate:"required"`
	Title       string    `json:"title" example:"Dune" validate:"required"`
	Author      string    `json:"author" example:"Frank Herbert" validate:"required"`
	Status      string    `json:"status" example:"to-read" validate:"required"`
	StatusLabel string    `json:"statusLabel" example:"To read"`
	ActionLabel string    `json:"actionLabel" example:"Start"`
	AddedDate   time.Time `json:"addedDate"`
}

// BookListResponse wraps a filtered listing.
type BookListResponse struct {
	Books  []BookResponse `json:"books" validate:"required"`
	Filter string         `json:"filter" example:"all" validate:"required"`
	Total  int            `json:"total" example:"3" validate:"required"`
}

// StatusInfo is one row of the lifecycle table.
type StatusInfo struct {
	Status      string `json:"status" example:"reading"`
	Label       string `json:"label" example:"Reading"`
	ActionLabel string `json:"actionLabel" example:"Finish"`
	Next        string `json:"next" example:"completed"`
}

func toBookResponse(b models.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Status:      b.Status.String(),
		StatusLabel: b.Status.Label(),
		ActionLabel: b.Status.ActionLabel(),
		AddedDate:   b.AddedDate,
	}
}
