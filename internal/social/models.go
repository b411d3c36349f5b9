package social

import "time"

// Target is the author a follow or unfollow was aimed at.
type Target struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Like records who liked which post, plus the post's author at that moment.
type Like struct {
	UserID    string    `json:"user_id"`
	PostID    int64     `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
