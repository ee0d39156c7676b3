package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/qolzam/telar/apps/social/internal/cache"
	"github.com/qolzam/telar/apps/social/internal/events"
	"github.com/qolzam/telar/apps/social/internal/metrics"
	"github.com/qolzam/telar/apps/social/internal/middleware/requestid"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	platform "github.com/qolzam/telar/apps/social/internal/platform"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/notifications"
	notificationHandlers "github.com/qolzam/telar/apps/social/notifications/handlers"
	notificationRepository "github.com/qolzam/telar/apps/social/notifications/repository"
	notificationServices "github.com/qolzam/telar/apps/social/notifications/services"
	"github.com/qolzam/telar/apps/social/posts"
	postHandlers "github.com/qolzam/telar/apps/social/posts/handlers"
	postsRepository "github.com/qolzam/telar/apps/social/posts/repository"
	postsServices "github.com/qolzam/telar/apps/social/posts/services"
	"github.com/qolzam/telar/apps/social/users"
	userHandlers "github.com/qolzam/telar/apps/social/users/handlers"
	usersRepository "github.com/qolzam/telar/apps/social/users/repository"
	usersServices "github.com/qolzam/telar/apps/social/users/services"
)

// dependencies are the process-wide handles shared by every service.
type dependencies struct {
	config    *platformconfig.Config
	base      *platform.BaseService
	cache     *cache.GenericCacheService
	publisher events.Publisher
}

func newApp(deps dependencies) *fiber.App {
	cfg := deps.config

	app := fiber.New(fiber.Config{
		AppName: "social-api",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.ErrorWithContext(c.Context(), "[ErrorHandler] Path: %s, Error: %v, Code: %d", c.Path(), err, code)

			// If response already set by handler, don't override it
			if len(c.Response().Body()) > 0 {
				return nil
			}
			return c.Status(code).JSON(fiber.Map{
				"code":    errorCode(code),
				"message": utils.StatusMessage(code),
				"details": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.Metrics.Enabled {
		app.Use(metrics.Middleware())
	}

	// CORS Configuration for Browser Direct Access
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.WebDomain,
		AllowHeaders: "Origin, Content-Type, Accept, " + requestid.HeaderRequestID,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := deps.base.HealthCheck(c.Context()); err != nil {
			log.WarnWithContext(c.Context(), "Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "Service unavailable",
				"details": err.Error(),
			})
		}
		status := fiber.Map{"status": "ok", "database": deps.base.DatabaseType}
		if deps.cache.IsEnabled() {
			status["cache"] = deps.cache.GetStats()
		}
		return c.JSON(status)
	})
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, metrics.Handler())
	}

	// All repositories share one store handle so paired writes join a single transaction.
	userRepo := usersRepository.NewDocumentRepository(deps.base.Repository)
	postRepo := postsRepository.NewDocumentRepository(deps.base.Repository)
	notificationRepo := notificationRepository.NewDocumentRepository(deps.base.Repository)

	notificationService := notificationServices.NewNotificationService(notificationRepo, deps.publisher)
	postService := postsServices.NewPostService(postRepo, userRepo, deps.cache, notificationService)
	userService := usersServices.NewUserService(userRepo, postRepo, notificationService, postService)

	users.RegisterRoutes(app, &users.UsersHandlers{
		UserHandler: userHandlers.NewUserHandler(userService),
	})
	posts.RegisterRoutes(app, &posts.PostsHandlers{
		PostHandler: postHandlers.NewPostHandler(postService),
	})
	notifications.RegisterRoutes(app, &notifications.NotificationsHandlers{
		NotificationHandler: notificationHandlers.NewNotificationHandler(notificationService),
	})

	return app
}

// errorCode names the fallback error body code for a status produced outside the domain handlers.
func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "INTERNAL_ERROR"
	}
}
