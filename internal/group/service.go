// Package group manages the communities posts can be filed under.
package group

import (
	"context"
	"errors"
	"strings"

	"backend-yatube/internal/db"
	"backend-yatube/internal/logging"
	"backend-yatube/internal/shared/apperr"
	"backend-yatube/internal/shared/form"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input Group) (Group, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	if err := form.Check(input); err != nil {
		return Group{}, err
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO groups (title, slug, description)
		VALUES ($1,$2,$3)
		RETURNING id
	`, input.Title, input.Slug, input.Description).Scan(&input.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Group{}, apperr.Invalid("slug", "Group with this slug already exists.")
		}
		return Group{}, err
	}
	logging.Log.WithFields(logrus.Fields{"group_id": input.ID, "slug": input.Slug}).Debug("group created")
	return input, nil
}

func (s *Service) List(ctx context.Context) ([]Group, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, slug, description
		FROM groups
		ORDER BY title, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []Group{}
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Delete removes the group. Its posts survive with no group; the foreign
// key's ON DELETE SET NULL takes care of that.
func (s *Service) Delete(ctx context.Context, slug string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM groups WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	logging.Log.WithField("slug", slug).Debug("group deleted")
	return nil
}
