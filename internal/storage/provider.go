// Package storage defines the persisted key-value store that holds the reading list.
package storage

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrKeyNotFound is returned by Get when the slot has never been written.
var ErrKeyNotFound = errors.New("storage: key not found")

// Provider is the interface for named-slot persistence.
type Provider interface {
	// Get returns the raw bytes stored under key.
	Get(key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys lists every stored key in lexical order.
	Keys() ([]string, error)
}

var keyRe = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// ValidateKey rejects keys that are empty, start with a dot, or contain
// characters outside [A-Za-z0-9._-].
func ValidateKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
