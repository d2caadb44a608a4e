package repository

import "errors"

// Common repository errors
var (
	// ErrBoardNotFound is returned when no board matches the lookup (or, for
	// conditional writes, when no board matches both id and author).
	ErrBoardNotFound = errors.New("board not found")
)
