package users

import (
	"github.com/gofiber/fiber/v2"
	constraints "github.com/qolzam/telar/apps/social/internal/middleware/constraints"
	"github.com/qolzam/telar/apps/social/users/handlers"
)

// UsersHandlers holds all the handlers this router needs.
type UsersHandlers struct {
	UserHandler *handlers.UserHandler
}

// RegisterRoutes is the single entry point for setting up users routes.
func RegisterRoutes(app fiber.Router, handlers *UsersHandlers) {
	group := app.Group("/users")

	// Collection routes
	group.Get("/", handlers.UserHandler.ListUsers)
	group.Post("/", handlers.UserHandler.CreateUser)
	group.Put("/", handlers.UserHandler.UpdateUser)

	// Static routes must precede /:id
	group.Get("/lookup", handlers.UserHandler.LookupUser)
	group.Post("/email", handlers.UserHandler.GetUserByEmail)
	group.Post("/follow", handlers.UserHandler.FollowUser)
	group.Post("/unfollow", handlers.UserHandler.UnfollowUser)

	group.Get("/:id", constraints.RequireUUID("id"), handlers.UserHandler.GetUser)
}
