package form

import (
	"errors"
	"net/http/httptest"
	"strconv"
	"testing"

	"backend-yatube/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

type sample struct {
	Text string `json:"text" validate:"required"`
	Slug string `json:"slug" validate:"required,max=10,slug"`
}

func TestCheckRequired(t *testing.T) {
	err := Check(sample{Slug: "ok"})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["text"] != requiredMessage {
		t.Fatalf("unexpected fields: %+v", verr.Fields)
	}
}

func TestCheckSlug(t *testing.T) {
	err := Check(sample{Text: "x", Slug: "bad slug"})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) || verr.Fields["slug"] == "" {
		t.Fatalf("expected slug error, got %v", err)
	}

	err = Check(sample{Text: "x", Slug: "way-too-long-slug"})
	if !errors.As(err, &verr) || verr.Fields["slug"] == "" {
		t.Fatalf("expected max error, got %v", err)
	}
}

func TestCheckValid(t *testing.T) {
	if err := Check(sample{Text: "x", Slug: "the_group"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/posts/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendString(strconv.FormatInt(id, 10))
	})

	for path, want := range map[string]int{
		"/posts/42":  fiber.StatusOK,
		"/posts/0":   fiber.StatusNotFound,
		"/posts/-3":  fiber.StatusNotFound,
		"/posts/abc": fiber.StatusNotFound,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode != want {
			t.Fatalf("%s: got %d, want %d", path, resp.StatusCode, want)
		}
	}
}
