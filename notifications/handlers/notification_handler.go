package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/notifications/errors"
	"github.com/qolzam/telar/apps/social/notifications/models"
	"github.com/qolzam/telar/apps/social/notifications/services"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler with injected dependencies
func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications handles GET /notifications/:userId
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	notifications, err := h.notificationService.ListNotifications(c.Context(), c.Params("userId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(notifications)
}

// MarkSeen handles PUT /notifications/:notificationId/seen
func (h *NotificationHandler) MarkSeen(c *fiber.Ctx) error {
	notification, err := h.notificationService.MarkSeen(c.Context(), c.Params("notificationId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(notification)
}

// MarkAllSeen handles PUT /notifications/:userId/seen-all
func (h *NotificationHandler) MarkAllSeen(c *fiber.Ctx) error {
	updated, err := h.notificationService.MarkAllSeen(c.Context(), c.Params("userId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.MarkAllSeenResponse{Updated: updated})
}
