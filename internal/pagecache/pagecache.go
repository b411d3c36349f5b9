// Package pagecache keeps rendered listing pages in redis for a short time.
package pagecache

import (
	"errors"
	"time"

	"backend-yatube/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "page:"
	HeaderCache = "X-Cache"
)

// New returns a middleware serving GET responses from redis while they are
// younger than ttl. A nil client or a non-positive ttl disables it.
// Redis failures are logged and the request is served uncached.
func New(client *redis.Client, ttl time.Duration) fiber.Handler {
	if client == nil || ttl <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		ctx := c.UserContext()
		key := Key(c.Path(), c.Query("page"))

		body, err := client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			c.Set(HeaderCache, "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Send(body)
		case !errors.Is(err, redis.Nil):
			logging.Log.WithError(err).WithField("key", key).Warn("page cache read failed")
		}

		if err := c.Next(); err != nil {
			return err
		}
		c.Set(HeaderCache, "MISS")
		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		if err := client.Set(ctx, key, c.Response().Body(), ttl).Err(); err != nil {
			logging.Log.WithError(err).WithField("key", key).Warn("page cache write failed")
		}
		return nil
	}
}

// Key identifies one page of one listing.
func Key(path, page string) string {
	if page == "" {
		page = "1"
	}
	return keyPrefix + path + "?page=" + page
}
