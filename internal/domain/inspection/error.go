package inspection

import "errors"

var (
	ErrNotFound          = errors.New("inspection not found")
	ErrDuplicateProtocol = errors.New("protocol already registered")
	ErrInvalidInput      = errors.New("invalid input")
)
