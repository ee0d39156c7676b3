package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"
	"github.com/qolzam/telar/apps/social/users/errors"
	"github.com/qolzam/telar/apps/social/users/models"
	"github.com/qolzam/telar/apps/social/users/services"
)

// UserHandler handles all user-related HTTP requests
type UserHandler struct {
	userService services.UserService
	decoder     *schema.Decoder
}

// NewUserHandler creates a new UserHandler with injected dependencies
func NewUserHandler(userService services.UserService) *UserHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &UserHandler{
		userService: userService,
		decoder:     decoder,
	}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.Context())
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /users/:id
// UUID validation is handled by constraints.RequireUUID middleware
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserByEmail handles POST /users/email with an {email} body
func (h *UserHandler) GetUserByEmail(c *fiber.Ctx) error {
	var req models.EmailLookupRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}
	return h.lookupByEmail(c, req.Email)
}

// LookupUser handles GET /users/lookup?email=
func (h *UserHandler) LookupUser(c *fiber.Ctx) error {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid query string")
	}

	var req models.EmailLookupRequest
	if err := h.decoder.Decode(&req, values); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid query string")
	}
	return h.lookupByEmail(c, req.Email)
}

func (h *UserHandler) lookupByEmail(c *fiber.Ctx, email string) error {
	profile, err := h.userService.GetUserByEmail(c.Context(), email)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(profile)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	user, err := h.userService.CreateUser(c.Context(), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(user)
}

// UpdateUser handles PUT /users
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	user, err := h.userService.UpdateUser(c.Context(), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.UserActionResponse{
		Message: "User updated successfully",
		User:    user,
	})
}

// FollowUser handles POST /users/follow
func (h *UserHandler) FollowUser(c *fiber.Ctx) error {
	var req models.FollowRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	result, err := h.userService.FollowUser(c.Context(), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(result)
}

// UnfollowUser handles POST /users/unfollow
func (h *UserHandler) UnfollowUser(c *fiber.Ctx) error {
	var req models.FollowRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	result, err := h.userService.UnfollowUser(c.Context(), &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(result)
}
