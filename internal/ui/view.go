package ui

import "github.com/starford/folio/internal/models"

// Card is one rendered book.
type Card struct {
	ID          string
	Title       string
	Author      string
	Status      string // token, used as a CSS class
	StatusLabel string
	ActionLabel string
}

// FilterOption is one filter control.
type FilterOption struct {
	Value  string
	Label  string
	Active bool
}

// Page is the view model of the reading list.
type Page struct {
	Cards      []Card
	EmptyState bool
	Filter     string
	Filters    []FilterOption
	Notices    []Notice
	Confirm    *Card
	NoticeTTL  int64 // milliseconds
}

// NewCard builds the card for b.
func NewCard(b models.Book) Card {
	return Card{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Status:      b.Status.String(),
		StatusLabel: b.Status.Label(),
		ActionLabel: b.Status.ActionLabel(),
	}
}

// BuildPage renders the already-filtered books under filter f.
func BuildPage(books []models.Book, f models.Filter) Page {
	p := Page{
		Cards:      make([]Card, 0, len(books)),
		EmptyState: len(books) == 0,
		Filter:     f.String(),
	}
	for _, b := range books {
		p.Cards = append(p.Cards, NewCard(b))
	}
	for _, opt := range models.Filters() {
		p.Filters = append(p.Filters, FilterOption{
			Value:  opt.String(),
			Label:  opt.Label(),
			Active: opt == f,
		})
	}
	return p
}
