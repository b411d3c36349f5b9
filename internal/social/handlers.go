package social

import (
	"backend-yatube/internal/auth"
	"backend-yatube/internal/shared/form"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, loginRequired fiber.Handler) {
	r.Post("/follow/:username", loginRequired, func(c *fiber.Ctx) error {
		target, err := svc.Follow(c.Context(), auth.ViewerID(c), c.Params("username"))
		if err != nil {
			return err
		}
		return c.Redirect(profilePath(target.Username), fiber.StatusFound)
	})

	r.Post("/unfollow/:username", loginRequired, func(c *fiber.Ctx) error {
		target, err := svc.Unfollow(c.Context(), auth.ViewerID(c), c.Params("username"))
		if err != nil {
			return err
		}
		return c.Redirect(profilePath(target.Username), fiber.StatusFound)
	})

	r.Post("/posts/:id/like", loginRequired, func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		if _, err := svc.Like(c.Context(), auth.ViewerID(c), id); err != nil {
			return err
		}
		return c.Redirect("/", fiber.StatusFound)
	})

	r.Post("/posts/:id/unlike", loginRequired, func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Unlike(c.Context(), auth.ViewerID(c), id); err != nil {
			return err
		}
		return c.Redirect("/", fiber.StatusFound)
	})
}

func profilePath(username string) string {
	return "/profile/" + username + "/"
}
