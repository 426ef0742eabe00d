package models

import "time"

type TVShow struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"location_id"`
	Name       string    `json:"name"`
	Year       int       `json:"year"`
	Dir        string    `json:"dir"`
	CreatedAt  time.Time `json:"created_at"`
}

type Episode struct {
	ID        int64     `json:"id"`
	ShowID    int64     `json:"show"`
	Season    int       `json:"season"`
	Episode   int       `json:"episode"`
	Title     string    `json:"title"`
	Path      string    `json:"path"`
	Quality   string    `json:"quality"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Season groups a show's episodes for display. Number 0 holds either
// specials or episodes without any season marker.
type Season struct {
	Number   int
	Specials bool
	Episodes []Episode
}
