package feed

import (
	"time"

	"backend-yatube/internal/paginate"
)

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type GroupRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Post is the row every listing returns.
type Post struct {
	ID           int64     `json:"id"`
	Text         string    `json:"text"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Author       Author    `json:"author"`
	Group        *GroupRef `json:"group,omitempty"`
	CommentCount int64     `json:"comment_count"`
	LikeCount    int64     `json:"like_count"`
}

type Listing struct {
	Posts []Post        `json:"posts"`
	Page  paginate.Page `json:"page"`
}

type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type GroupPage struct {
	Group Group `json:"group"`
	Listing
}

type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type ProfilePage struct {
	Author    Profile `json:"author"`
	Following bool    `json:"following"`
	Liking    bool    `json:"liking"`
	Listing
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type DetailPage struct {
	Post            Post      `json:"post"`
	AuthorPostCount int64     `json:"author_post_count"`
	Comments        []Comment `json:"comments"`
}
