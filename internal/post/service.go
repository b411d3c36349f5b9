// Package post handles writing posts and comments.
package post

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"backend-yatube/internal/db"
	"backend-yatube/internal/logging"
	"backend-yatube/internal/shared/apperr"
	"backend-yatube/internal/shared/form"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const foreignKeyViolation = "23503"

// Publisher receives every newly created post, keyed by its author.
type Publisher interface {
	PublishPost(username string, payload []byte)
}

type Service struct {
	db        db.Querier
	publisher Publisher
}

// NewService wires the post service. publisher may be nil.
func NewService(db db.Querier, publisher Publisher) *Service {
	return &Service{db: db, publisher: publisher}
}

func (s *Service) Create(ctx context.Context, author Author, f Form) (Post, error) {
	f.Text = strings.TrimSpace(f.Text)
	if err := form.Check(f); err != nil {
		return Post{}, err
	}

	p := Post{Text: f.Text, Author: author, GroupID: f.GroupID, ImageURL: f.Image}
	err := s.db.QueryRow(ctx, `
		INSERT INTO posts (text, author_id, group_id, image_url)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, p.Text, author.ID, nullableGroup(f.GroupID), p.ImageURL).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Post{}, unknownGroup(err)
	}

	logging.Log.WithFields(logrus.Fields{"post_id": p.ID, "author_id": author.ID}).Debug("post created")
	s.publish(p)
	return p, nil
}

// CheckAuthor reports apperr.ErrNotFound for a missing post and
// apperr.ErrForbidden when viewer did not write it.
func (s *Service) CheckAuthor(ctx context.Context, viewer Author, postID int64) error {
	authorID, err := s.authorOf(ctx, postID)
	if err != nil {
		return err
	}
	if authorID != viewer.ID {
		return apperr.ErrForbidden
	}
	return nil
}

// Edit rewrites a post. Only its author may do so; anyone else gets
// apperr.ErrForbidden and nothing changes. An empty image keeps the current one.
func (s *Service) Edit(ctx context.Context, viewer Author, postID int64, f Form) (Post, error) {
	if err := s.CheckAuthor(ctx, viewer, postID); err != nil {
		return Post{}, err
	}

	f.Text = strings.TrimSpace(f.Text)
	if err := form.Check(f); err != nil {
		return Post{}, err
	}

	p := Post{Author: viewer}
	err := s.db.QueryRow(ctx, `
		UPDATE posts
		SET text = $1, group_id = $2, image_url = COALESCE(NULLIF($3, ''), image_url)
		WHERE id = $4 AND author_id = $5
		RETURNING id, text, COALESCE(group_id, 0), image_url, created_at
	`, f.Text, nullableGroup(f.GroupID), f.Image, postID, viewer.ID).
		Scan(&p.ID, &p.Text, &p.GroupID, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		return Post{}, unknownGroup(apperr.NotFoundIfNoRows(err))
	}
	logging.Log.WithFields(logrus.Fields{"post_id": p.ID, "author_id": viewer.ID}).Debug("post edited")
	return p, nil
}

func (s *Service) AddComment(ctx context.Context, viewer Author, postID int64, f CommentForm) (Comment, error) {
	if _, err := s.authorOf(ctx, postID); err != nil {
		return Comment{}, err
	}

	f.Text = strings.TrimSpace(f.Text)
	if err := form.Check(f); err != nil {
		return Comment{}, err
	}

	c := Comment{PostID: postID, Author: viewer, Text: f.Text}
	err := s.db.QueryRow(ctx, `
		INSERT INTO comments (post_id, author_id, text)
		VALUES ($1,$2,$3)
		RETURNING id, created_at
	`, postID, viewer.ID, c.Text).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return Comment{}, apperr.ErrNotFound
		}
		return Comment{}, err
	}
	logging.Log.WithFields(logrus.Fields{"comment_id": c.ID, "post_id": postID}).Debug("comment added")
	return c, nil
}

func (s *Service) authorOf(ctx context.Context, postID int64) (string, error) {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, postID).Scan(&authorID)
	if err != nil {
		return "", apperr.NotFoundIfNoRows(err)
	}
	return authorID, nil
}

func (s *Service) publish(p Post) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		logging.Log.WithError(err).Warn("encode post for stream")
		return
	}
	s.publisher.PublishPost(p.Author.Username, payload)
}

func nullableGroup(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// unknownGroup reports a dangling group reference as a form error on the
// group field.
func unknownGroup(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return apperr.Invalid("group", "Select a valid choice. That choice is not one of the available choices.")
	}
	return err
}
