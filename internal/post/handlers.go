package post

import (
	"errors"
	"strconv"

	"backend-yatube/internal/auth"
	"backend-yatube/internal/shared/apperr"
	"backend-yatube/internal/shared/form"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, loginRequired fiber.Handler) {
	r.Post("/create", loginRequired, func(c *fiber.Ctx) error {
		var f Form
		if err := c.BodyParser(&f); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		viewer := viewerOf(c)
		if _, err := svc.Create(c.Context(), viewer, f); err != nil {
			return err
		}
		return c.Redirect("/profile/"+viewer.Username+"/", fiber.StatusFound)
	})

	r.Post("/posts/:id/edit", loginRequired, func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		viewer := viewerOf(c)
		var f Form
		if perr := c.BodyParser(&f); perr != nil {
			// A stranger is sent back to the post whatever the body holds.
			err = svc.CheckAuthor(c.Context(), viewer, id)
			if err == nil {
				err = fiber.NewError(fiber.StatusBadRequest, perr.Error())
			}
		} else {
			_, err = svc.Edit(c.Context(), viewer, id, f)
		}
		if err != nil && !errors.Is(err, apperr.ErrForbidden) {
			return err
		}
		return c.Redirect(detailPath(id), fiber.StatusFound)
	})

	r.Post("/posts/:id/comment", loginRequired, func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		var f CommentForm
		if err := c.BodyParser(&f); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if _, err := svc.AddComment(c.Context(), viewerOf(c), id, f); err != nil {
			return err
		}
		return c.Redirect(detailPath(id), fiber.StatusFound)
	})
}

func viewerOf(c *fiber.Ctx) Author {
	return Author{ID: auth.ViewerID(c), Username: auth.ViewerName(c)}
}

func detailPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}
