package auth

import (
	"net/url"
	"strings"

	"backend-yatube/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID   = "user_id"
	localUsername = "username"

	// TokenCookie lets browser clients authenticate without setting headers.
	TokenCookie = "access_token"
)

// JWTMiddleware validates bearer tokens and stores the viewer in locals.
// Requests without a valid token are rejected with 401.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := parseClaims(secretBytes, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		setViewer(c, claims)
		return c.Next()
	}
}

// Viewer identifies the caller when a valid token is presented and lets
// everyone else through anonymously.
func Viewer(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Cookies(TokenCookie)
		}
		if token == "" {
			return c.Next()
		}
		if claims, err := parseClaims(secretBytes, token); err == nil {
			setViewer(c, claims)
		}
		return c.Next()
	}
}

// RequireLogin sends anonymous callers to loginPath with the page they
// asked for in ?next=. It expects Viewer to have run first.
func RequireLogin(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ViewerID(c) != "" {
			return c.Next()
		}
		return c.Redirect(loginPath+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
	}
}

// RequireStaff refuses viewers whose username is not in staff with
// apperr.ErrForbidden. It expects RequireLogin to have run first.
func RequireStaff(staff []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(staff))
	for _, name := range staff {
		if name = strings.TrimSpace(name); name != "" {
			allowed[name] = struct{}{}
		}
	}
	return func(c *fiber.Ctx) error {
		if _, ok := allowed[ViewerName(c)]; !ok {
			return apperr.ErrForbidden
		}
		return c.Next()
	}
}

func ViewerID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func ViewerName(c *fiber.Ctx) string {
	name, _ := c.Locals(localUsername).(string)
	return name
}

func setViewer(c *fiber.Ctx, claims *Claims) {
	c.Locals(localUserID, claims.UserID)
	c.Locals(localUsername, claims.Username)
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
