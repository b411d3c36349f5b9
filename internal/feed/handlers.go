package feed

import (
	"backend-yatube/internal/auth"
	"backend-yatube/internal/shared/form"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the read side. indexCache wraps only the global
// index; pass a pass-through handler to disable it.
func RegisterRoutes(r fiber.Router, svc *Service, loginRequired, indexCache fiber.Handler) {
	r.Get("/", indexCache, func(c *fiber.Ctx) error {
		listing, err := svc.Index(c.Context(), c.Query("page"))
		if err != nil {
			return err
		}
		return c.JSON(listing)
	})

	r.Get("/group/:slug", func(c *fiber.Ctx) error {
		page, err := svc.Group(c.Context(), c.Params("slug"), c.Query("page"))
		if err != nil {
			return err
		}
		return c.JSON(page)
	})

	r.Get("/profile/:username", func(c *fiber.Ctx) error {
		page, err := svc.Profile(c.Context(), auth.ViewerID(c), c.Params("username"), c.Query("page"))
		if err != nil {
			return err
		}
		return c.JSON(page)
	})

	r.Get("/posts/:id", func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		detail, err := svc.Detail(c.Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(detail)
	})

	r.Get("/follow", loginRequired, func(c *fiber.Ctx) error {
		listing, err := svc.Following(c.Context(), auth.ViewerID(c), c.Query("page"))
		if err != nil {
			return err
		}
		return c.JSON(listing)
	})

	r.Get("/liked", loginRequired, func(c *fiber.Ctx) error {
		listing, err := svc.Liked(c.Context(), auth.ViewerID(c), c.Query("page"))
		if err != nil {
			return err
		}
		return c.JSON(listing)
	})
}
