package server

import (
	"backend-yatube/internal/auth"
	"backend-yatube/internal/config"
	"backend-yatube/internal/db"
	"backend-yatube/internal/feed"
	"backend-yatube/internal/group"
	"backend-yatube/internal/logging"
	"backend-yatube/internal/pagecache"
	"backend-yatube/internal/post"
	"backend-yatube/internal/shared/apperr"
	"backend-yatube/internal/social"
	"backend-yatube/internal/storage"
	"backend-yatube/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     db.Querier
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, database db.Querier, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     database,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Static(storage.URLPrefix, s.Cfg.MediaRoot)

	s.App.Use(auth.Viewer(s.Cfg.JWTSecret))
	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	loginRequired := auth.RequireLogin(s.loginPath())
	indexCache := pagecache.New(s.Redis, s.Cfg.PageCacheTTL)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	storage.RegisterRoutes(s.App.Group("/storage"), storage.NewService(s.DB, s.Cfg.MediaRoot), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)

	feed.RegisterRoutes(s.App, feed.NewService(s.DB), loginRequired, indexCache)
	post.RegisterRoutes(s.App, post.NewService(s.DB, s.Stream), loginRequired)
	social.RegisterRoutes(s.App, social.NewService(s.DB), loginRequired)
	group.RegisterRoutes(s.App, group.NewService(s.DB), loginRequired, auth.RequireStaff(s.Cfg.StaffUsernames))
}

func (s *Server) loginPath() string {
	if s.Cfg.LoginPath == "" {
		return "/auth/login"
	}
	return s.Cfg.LoginPath
}

// errorHandler logs unexpected failures before rendering them; expected
// outcomes such as 404 or a rejected form are not logged.
func errorHandler(c *fiber.Ctx, err error) error {
	if err := apperr.Handler(c, err); err != nil {
		return err
	}
	if c.Response().StatusCode() >= fiber.StatusInternalServerError {
		logging.Log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
	}
	return nil
}
