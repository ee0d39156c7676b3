package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/posts/errors"
	"github.com/qolzam/telar/apps/social/posts/models"
	"github.com/qolzam/telar/apps/social/posts/services"
)

// PostHandler handles all post-related HTTP requests.
// UUID path parameters are validated by constraints.RequireUUID middleware.
type PostHandler struct {
	postService services.PostService
}

// NewPostHandler creates a new PostHandler with injected dependencies
func NewPostHandler(postService services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// ListPosts handles GET /posts
func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.postService.ListPosts(c.Context())
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(posts)
}

// ListUserPosts handles GET /users/:id/posts
func (h *PostHandler) ListUserPosts(c *fiber.Ctx) error {
	posts, err := h.postService.ListUserPosts(c.Context(), c.Params("id"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /posts/:postId
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.postService.GetPost(c.Context(), c.Params("postId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var req models.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	post, err := h.postService.CreatePost(c.Context(), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /posts/:postId
func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	var req models.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	post, err := h.postService.UpdatePost(c.Context(), c.Params("postId"), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /posts/:postId
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	if err := h.postService.DeletePost(c.Context(), c.Params("postId")); err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Post deleted successfully"})
}

// LikePost handles POST /posts/:postId/like
func (h *PostHandler) LikePost(c *fiber.Ctx) error {
	var req models.LikeRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	post, err := h.postService.LikePost(c.Context(), c.Params("postId"), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// UnlikePost handles POST /posts/:postId/unlike
func (h *PostHandler) UnlikePost(c *fiber.Ctx) error {
	var req models.LikeRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	post, err := h.postService.UnlikePost(c.Context(), c.Params("postId"), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.PostActionResponse{Message: "Post unliked successfully", Post: post})
}

// AddComment handles POST /posts/:postId/comments
func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	var req models.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	post, err := h.postService.AddComment(c.Context(), c.Params("postId"), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// DeleteComment handles DELETE /posts/:postId/comments/:commentId
func (h *PostHandler) DeleteComment(c *fiber.Ctx) error {
	post, err := h.postService.DeleteComment(c.Context(), c.Params("postId"), c.Params("commentId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.PostActionResponse{Message: "Comment deleted successfully", Post: post})
}
