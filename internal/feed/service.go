// Package feed composes the ordered, paginated post listings: the global
// index, group and profile pages, the follow feed, the liked feed and the
// single-post detail page.
package feed

import (
	"context"
	"fmt"
	"strings"

	"backend-yatube/internal/db"
	"backend-yatube/internal/paginate"
	"backend-yatube/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
)

// postColumns is shared by every listing so all of them return the same row.
const postColumns = `
	SELECT p.id, p.text, p.image_url, p.created_at,
	       u.id, u.username,
	       COALESCE(g.id, 0), COALESCE(g.title, ''), COALESCE(g.slug, ''),
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	       (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

const newestFirst = `ORDER BY p.created_at DESC, p.id DESC`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Index lists every post.
func (s *Service) Index(ctx context.Context, rawPage string) (Listing, error) {
	return s.list(ctx, "TRUE", nil, rawPage)
}

func (s *Service) Group(ctx context.Context, slug, rawPage string) (GroupPage, error) {
	var g Group
	err := s.db.QueryRow(ctx, `
		SELECT id, title, slug, description FROM groups WHERE slug = $1
	`, slug).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		return GroupPage{}, apperr.NotFoundIfNoRows(err)
	}

	listing, err := s.list(ctx, "p.group_id = $1", []any{g.ID}, rawPage)
	if err != nil {
		return GroupPage{}, err
	}
	return GroupPage{Group: g, Listing: listing}, nil
}

// Profile lists the posts of username. viewerID may be empty for anonymous
// callers, in which case both relationship flags stay false.
func (s *Service) Profile(ctx context.Context, viewerID, username, rawPage string) (ProfilePage, error) {
	var author Profile
	err := s.db.QueryRow(ctx, `
		SELECT id, username, full_name FROM users WHERE username = $1
	`, username).Scan(&author.ID, &author.Username, &author.FullName)
	if err != nil {
		return ProfilePage{}, apperr.NotFoundIfNoRows(err)
	}

	page := ProfilePage{Author: author}
	if viewerID != "" {
		err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND author_id = $2),
			       EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND author_id = $2)
		`, viewerID, author.ID).Scan(&page.Following, &page.Liking)
		if err != nil {
			return ProfilePage{}, fmt.Errorf("relationship flags: %w", err)
		}
	}

	page.Listing, err = s.list(ctx, "p.author_id = $1", []any{author.ID}, rawPage)
	if err != nil {
		return ProfilePage{}, err
	}
	return page, nil
}

// Following lists posts by authors the viewer follows.
func (s *Service) Following(ctx context.Context, viewerID, rawPage string) (Listing, error) {
	return s.list(ctx,
		"p.author_id IN (SELECT f.author_id FROM follows f WHERE f.follower_id = $1)",
		[]any{viewerID}, rawPage)
}

// Liked lists the viewer's own posts that somebody has liked. It filters on
// the author recorded in likes rather than joining back through posts.
func (s *Service) Liked(ctx context.Context, viewerID, rawPage string) (Listing, error) {
	return s.list(ctx,
		"EXISTS (SELECT 1 FROM likes lk WHERE lk.post_id = p.id AND lk.author_id = $1)",
		[]any{viewerID}, rawPage)
}

func (s *Service) Detail(ctx context.Context, postID int64) (DetailPage, error) {
	post, err := scanPost(s.db.QueryRow(ctx, postColumns+` WHERE p.id = $1`, postID))
	if err != nil {
		return DetailPage{}, apperr.NotFoundIfNoRows(err)
	}

	detail := DetailPage{Post: post}
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, post.Author.ID).
		Scan(&detail.AuthorPostCount)
	if err != nil {
		return DetailPage{}, fmt.Errorf("author post count: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.post_id, u.id, u.username, c.text, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id
	`, postID)
	if err != nil {
		return DetailPage{}, err
	}
	defer rows.Close()

	detail.Comments = []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author.ID, &c.Author.Username, &c.Text, &c.CreatedAt); err != nil {
			return DetailPage{}, err
		}
		detail.Comments = append(detail.Comments, c)
	}
	if err := rows.Err(); err != nil {
		return DetailPage{}, err
	}
	return detail, nil
}

// list counts the posts matching where, clamps rawPage against that count
// and fetches the one page. where may only reference the posts alias p and
// the positional args passed alongside it.
func (s *Service) list(ctx context.Context, where string, args []any, rawPage string) (Listing, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts p WHERE `+where, args...).Scan(&count); err != nil {
		return Listing{}, fmt.Errorf("count posts: %w", err)
	}

	page := paginate.New(int(count), rawPage)
	n := len(args)
	var sql strings.Builder
	sql.WriteString(postColumns)
	fmt.Fprintf(&sql, " WHERE %s %s LIMIT $%d OFFSET $%d", where, newestFirst, n+1, n+2)
	pageArgs := append(append([]any{}, args...), page.Limit(), page.Offset())

	rows, err := s.db.Query(ctx, sql.String(), pageArgs...)
	if err != nil {
		return Listing{}, err
	}
	defer rows.Close()

	posts := make([]Post, 0, page.Len())
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return Listing{}, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return Listing{}, err
	}
	return Listing{Posts: posts, Page: page}, nil
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	var g GroupRef
	err := row.Scan(
		&p.ID, &p.Text, &p.ImageURL, &p.CreatedAt,
		&p.Author.ID, &p.Author.Username,
		&g.ID, &g.Title, &g.Slug,
		&p.CommentCount, &p.LikeCount,
	)
	if err != nil {
		return Post{}, err
	}
	if g.ID != 0 {
		p.Group = &g
	}
	return p, nil
}
