package models

import "time"

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether t is a known location type.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// MediaLocation is a filesystem root the scanner walks.
type MediaLocation struct {
	ID        int64     `json:"id"`
	Type      MediaType `json:"type"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}
