// Package models defines the domain types for folio.
package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Book is a single tracked reading item.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Status    Status    `json:"status"`
	AddedDate time.Time `json:"addedDate"`
}

// notBlank rejects strings made only of whitespace, which Required lets through.
var notBlank = validation.By(func(v any) error {
	if s, _ := v.(string); strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// Validate checks the stored-record invariants: non-blank id, title and
// author and a defined status.
func (b Book) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required, notBlank),
		validation.Field(&b.Title, validation.Required, notBlank),
		validation.Field(&b.Author, validation.Required, notBlank),
		validation.Field(&b.Status),
	)
}
