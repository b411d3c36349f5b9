package storage

import (
	"io"

	"backend-yatube/internal/auth"
	"backend-yatube/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 5 << 20

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		header, err := c.FormFile("image")
		if err != nil {
			return apperr.Invalid("image", "This field is required.")
		}
		if header.Size > maxImageBytes {
			return apperr.Invalid("image", "The file is too large.")
		}

		file, err := header.Open()
		if err != nil {
			return err
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return err
		}

		img, err := svc.Save(c.Context(), auth.ViewerID(c), data)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":  img.ID,
			"url": img.URL,
		})
	})
}
