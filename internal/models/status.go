package models

import (
	"errors"
	"fmt"
)

// Status is the reading-progress state of a Book.
type Status uint8

const (
	StatusToRead Status = iota
	StatusReading
	StatusCompleted
)

type statusInfo struct {
	token  string
	label  string
	action string // label of the control that advances to next
	next   Status
}

var statusTable = [...]statusInfo{
	StatusToRead:    {token: "to-read", label: "To read", action: "Start", next: StatusReading},
	StatusReading:   {token: "reading", label: "Reading", action: "Finish", next: StatusCompleted},
	StatusCompleted: {token: "completed", label: "Completed", action: "Reread", next: StatusToRead},
}

var errUnknownStatus = errors.New("unknown status")

// Statuses returns every defined status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusToRead, StatusReading, StatusCompleted}
}

// ParseStatus maps a persisted token ("to-read", "reading", "completed") to a Status.
func ParseStatus(token string) (Status, error) {
	for s, info := range statusTable {
		if info.token == token {
			return Status(s), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errUnknownStatus, token)
}

// Valid reports whether s is one of the defined variants.
func (s Status) Valid() bool { return int(s) < len(statusTable) }

// Next returns the status that follows s in the ToRead → Reading → Completed → ToRead cycle.
func (s Status) Next() Status {
	if !s.Valid() {
		return StatusToRead
	}
	return statusTable[s].next
}

// Label is the display label of s.
func (s Status) Label() string {
	if !s.Valid() {
		return ""
	}
	return statusTable[s].label
}

// ActionLabel is the label of the control that advances a book out of s.
func (s Status) ActionLabel() string {
	if !s.Valid() {
		return ""
	}
	return statusTable[s].action
}

// String returns the persisted token.
func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("status(%d)", uint8(s))
	}
	return statusTable[s].token
}

// Validate implements validation.Validatable.
func (s Status) Validate() error {
	if !s.Valid() {
		return fmt.Errorf("%w: %d", errUnknownStatus, uint8(s))
	}
	return nil
}

// MarshalText encodes s as its token.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(statusTable[s].token), nil
}

// UnmarshalText decodes a token; unknown tokens are an error.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
