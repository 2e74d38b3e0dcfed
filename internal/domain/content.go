package domain

import "time"

// ContentID identifies a gif record in the metadata store and the search index.
type ContentID int64

// ContentRecord is the denormalized listing card for one gif.
// The search core treats records as opaque: it resolves ids against the
// metadata store and hands records back without owning their lifecycle.
type ContentRecord struct {
	ID         ContentID `json:"id"`
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Duration   float64   `json:"duration"`
	Uploader   string    `json:"uploader"`
	UploaderID int64     `json:"uploader_id"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	Likes      int       `json:"like"`
	PubTime    time.Time `json:"pub_time"`
}
