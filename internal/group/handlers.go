package group

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the group catalogue. Reads are public; writes need
// loginRequired followed by staffOnly.
func RegisterRoutes(r fiber.Router, svc *Service, loginRequired, staffOnly fiber.Handler) {
	r.Get("/groups", func(c *fiber.Ctx) error {
		groups, err := svc.List(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(groups)
	})

	r.Post("/groups", loginRequired, staffOnly, func(c *fiber.Ctx) error {
		var req Group
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		g, err := svc.Create(c.Context(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	})

	r.Delete("/group/:slug", loginRequired, staffOnly, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("slug")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
