package services

import "errors"

// Sentinel errors returned by the store-facing service methods. The fiber
// handlers map them to HTTP statuses; anything else becomes a generic 500
// so driver errors never leak to clients.
var (
	ErrUsernameTaken      = errors.New("Username already taken.")
	ErrInvalidCredentials = errors.New("Invalid username or password.")
	ErrScoreNotFound      = errors.New("Score ID not found.")
	ErrInvalidGridSize    = errors.New("Invalid grid size.")
)
