package storage

import "time"

type Image struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
