package bookstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/folio/internal/models"
)

// record mirrors models.Book with pointer fields so that missing keys are
// distinguishable from zero values.
type record struct {
	ID        *string        `json:"id"`
	Title     *string        `json:"title"`
	Author    *string        `json:"author"`
	Status    *models.Status `json:"status"`
	AddedDate *time.Time     `json:"addedDate"`
}

var errMissingField = errors.New("missing field")

func encode(books []models.Book) ([]byte, error) {
	if books == nil {
		books = []models.Book{}
	}
	return json.Marshal(books)
}

// decode parses a persisted collection. Any shape mismatch rejects the whole
// payload.
func decode(data []byte) ([]models.Book, error) {
	var records []record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode: trailing data")
	}
	if records == nil {
		return nil, errors.New("decode: not an array")
	}

	books := make([]models.Book, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == nil || r.Title == nil || r.Author == nil || r.Status == nil || r.AddedDate == nil {
			return nil, fmt.Errorf("record %d: %w", i, errMissingField)
		}
		b := models.Book{
			ID:        *r.ID,
			Title:     strings.TrimSpace(*r.Title),
			Author:    strings.TrimSpace(*r.Author),
			Status:    *r.Status,
			AddedDate: *r.AddedDate,
		}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %s", i, b.ID)
		}
		seen[b.ID] = struct{}{}
		books = append(books, b)
	}
	return books, nil
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
