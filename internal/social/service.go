// Package social holds the engagement relations: following authors and
// liking posts.
package social

import (
	"context"
	"errors"

	"backend-yatube/internal/db"
	"backend-yatube/internal/logging"
	"backend-yatube/internal/shared/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const foreignKeyViolation = "23503"

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Follow makes viewerID follow username. Following yourself is ignored and
// following twice leaves a single row.
func (s *Service) Follow(ctx context.Context, viewerID, username string) (Target, error) {
	target, err := s.resolve(ctx, username)
	if err != nil {
		return Target{}, err
	}
	if target.ID == viewerID {
		return target, nil
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO follows (follower_id, author_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, viewerID, target.ID)
	if err != nil {
		return Target{}, vanished(err)
	}
	logging.Log.WithFields(logrus.Fields{
		"follower_id": viewerID,
		"author_id":   target.ID,
		"created":     tag.RowsAffected() == 1,
	}).Debug("follow")
	return target, nil
}

func (s *Service) Unfollow(ctx context.Context, viewerID, username string) (Target, error) {
	target, err := s.resolve(ctx, username)
	if err != nil {
		return Target{}, err
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND author_id = $2
	`, viewerID, target.ID)
	if err != nil {
		return Target{}, err
	}
	if tag.RowsAffected() == 0 {
		return Target{}, apperr.ErrNotFound
	}
	logging.Log.WithFields(logrus.Fields{"follower_id": viewerID, "author_id": target.ID}).Debug("unfollow")
	return target, nil
}

// Like records that viewerID likes postID, copying the post's author onto
// the row so "liked posts of mine" never has to join back through posts.
func (s *Service) Like(ctx context.Context, viewerID string, postID int64) (Like, error) {
	like := Like{UserID: viewerID, PostID: postID}
	err := s.db.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, postID).Scan(&like.AuthorID)
	if err != nil {
		return Like{}, apperr.NotFoundIfNoRows(err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO likes (user_id, post_id, author_id)
		VALUES ($1,$2,$3)
		ON CONFLICT DO NOTHING
	`, like.UserID, like.PostID, like.AuthorID)
	if err != nil {
		return Like{}, vanished(err)
	}
	logging.Log.WithFields(logrus.Fields{"user_id": viewerID, "post_id": postID}).Debug("like")
	return like, nil
}

func (s *Service) Unlike(ctx context.Context, viewerID string, postID int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM likes WHERE user_id = $1 AND post_id = $2
	`, viewerID, postID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	logging.Log.WithFields(logrus.Fields{"user_id": viewerID, "post_id": postID}).Debug("unlike")
	return nil
}

func (s *Service) resolve(ctx context.Context, username string) (Target, error) {
	var t Target
	err := s.db.QueryRow(ctx, `
		SELECT id, username FROM users WHERE username = $1
	`, username).Scan(&t.ID, &t.Username)
	if err != nil {
		return Target{}, apperr.NotFoundIfNoRows(err)
	}
	return t, nil
}

// vanished maps a foreign key violation (the user or post was deleted between
// lookup and insert) to ErrNotFound.
func vanished(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return apperr.ErrNotFound
	}
	return err
}
