package posts

import (
	"github.com/gofiber/fiber/v2"
	constraints "github.com/qolzam/telar/apps/social/internal/middleware/constraints"
	"github.com/qolzam/telar/apps/social/posts/handlers"
)

// PostsHandlers holds all the handlers this router needs.
type PostsHandlers struct {
	PostHandler *handlers.PostHandler
}

// RegisterRoutes is the single entry point for setting up posts routes.
func RegisterRoutes(app fiber.Router, handlers *PostsHandlers) {
	// A user's posts, derived from the owner reference
	app.Get("/users/:id/posts", constraints.RequireUUID("id"), handlers.PostHandler.ListUserPosts)

	group := app.Group("/posts")

	group.Get("/", handlers.PostHandler.ListPosts)
	group.Post("/", handlers.PostHandler.CreatePost)

	// --- Parameterized Routes for Specific Resources (MUST BE LAST) ---
	requirePost := constraints.RequireUUID("postId")
	group.Get("/:postId", requirePost, handlers.PostHandler.GetPost)
	group.Put("/:postId", requirePost, handlers.PostHandler.UpdatePost)
	group.Delete("/:postId", requirePost, handlers.PostHandler.DeletePost)
	group.Post("/:postId/like", requirePost, handlers.PostHandler.LikePost)
	group.Post("/:postId/unlike", requirePost, handlers.PostHandler.UnlikePost)
	group.Post("/:postId/comments", requirePost, handlers.PostHandler.AddComment)
	group.Delete("/:postId/comments/:commentId", constraints.RequireUUID("postId", "commentId"), handlers.PostHandler.DeleteComment)
}
