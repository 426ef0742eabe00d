package services

import "errors"

var (
	// ErrNotFound is returned when a catalog row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidLocation is returned for a media source that is not an existing directory
	// or has an unknown type.
	ErrInvalidLocation = errors.New("invalid media location")

	// ErrLocationExists is returned when the same directory is added twice.
	ErrLocationExists = errors.New("media location already exists")
)
