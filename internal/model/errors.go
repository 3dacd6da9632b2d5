package model

import "errors"

var (
	// ErrNotFound is returned by retreat sources when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned when an identifier is empty or malformed.
	ErrInvalidID = errors.New("invalid id")
)
