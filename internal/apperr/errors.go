// Package apperr defines the error kinds shared by the store and its surfaces.
package apperr

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrStorage              = errors.New("storage failure")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrUnknownAction        = errors.New("unknown action")
)
