// Package storage accepts image uploads for posts and keeps them under the
// media root.
package storage

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"backend-yatube/internal/db"
	"backend-yatube/internal/logging"
	"backend-yatube/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// URLPrefix is where the media root is served.
const URLPrefix = "/media"

const postsDir = "posts"

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

var writeFileFn = os.WriteFile

type Service struct {
	db        db.Querier
	mediaRoot string
}

func NewService(db db.Querier, mediaRoot string) *Service {
	return &Service{db: db, mediaRoot: mediaRoot}
}

// Save stores an uploaded image for userID. The content type is sniffed
// from the data; anything other than JPEG, PNG or GIF is rejected.
func (s *Service) Save(ctx context.Context, userID string, data []byte) (Image, error) {
	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return Image{}, apperr.Invalid("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	id := uuid.NewString()
	name := id + ext
	dir := filepath.Join(s.mediaRoot, postsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Image{}, err
	}
	path := filepath.Join(dir, name)
	if err := writeFileFn(path, data, 0o644); err != nil {
		return Image{}, err
	}

	img := Image{
		ID:          id,
		UserID:      userID,
		URL:         URLPrefix + "/" + postsDir + "/" + name,
		ContentType: contentType,
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO images (id, user_id, url, content_type)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, img.ID, userID, img.URL, contentType).Scan(&img.CreatedAt)
	if err != nil {
		_ = os.Remove(path)
		return Image{}, err
	}

	logging.Log.WithFields(logrus.Fields{"image_id": id, "user_id": userID}).Debug("image stored")
	return img, nil
}
