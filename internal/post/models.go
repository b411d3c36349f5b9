package post

import "time"

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Post struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	GroupID   int64     `json:"group,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Form is what create and edit accept. Group 0 means no group; Image is a
// reference returned by the upload endpoint.
type Form struct {
	Text    string `json:"text" form:"text" validate:"required"`
	GroupID int64  `json:"group" form:"group" validate:"gte=0"`
	Image   string `json:"image" form:"image" validate:"max=500"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentForm struct {
	Text string `json:"text" form:"text" validate:"required"`
}
