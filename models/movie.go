package models

import "time"

type Movie struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"location_id"`
	Title      string    `json:"title"`
	Year       int       `json:"year"`
	Path       string    `json:"path"` // relative to the media directory
	Quality    string    `json:"quality"`
	Size       int64     `json:"size"`
	Genre      string    `json:"genre"`
	Overview   string    `json:"overview"`
	CreatedAt  time.Time `json:"created_at"`
}
