package customer

import "errors"

var (
	ErrNotFound          = errors.New("client not found")
	ErrDuplicateDocument = errors.New("document already registered")
	ErrInvalidInput      = errors.New("invalid input")
)
