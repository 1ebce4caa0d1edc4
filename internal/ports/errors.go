package ports

import "errors"

// ErrNotFound is returned by catalog lookups when no row matches the key.
var ErrNotFound = errors.New("row not found")

// ErrConflict is returned by inserts that hit a unique or foreign-key
// constraint.
var ErrConflict = errors.New("storage constraint violated")
