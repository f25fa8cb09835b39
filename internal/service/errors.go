package service

import "errors"

// Errors returned to the HTTP layer. Callers wrap them with context using %w
// and the handlers map them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store unavailable")
	ErrQueue      = errors.New("queue unavailable")
)
