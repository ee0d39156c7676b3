package notifications

import (
	"github.com/gofiber/fiber/v2"
	constraints "github.com/qolzam/telar/apps/social/internal/middleware/constraints"
	"github.com/qolzam/telar/apps/social/notifications/handlers"
)

// NotificationsHandlers holds all the handlers this router needs.
type NotificationsHandlers struct {
	NotificationHandler *handlers.NotificationHandler
}

// RegisterRoutes is the single entry point for setting up notifications routes.
func RegisterRoutes(app fiber.Router, handlers *NotificationsHandlers) {
	group := app.Group("/notifications")

	group.Get("/:userId", constraints.RequireUUID("userId"), handlers.NotificationHandler.ListNotifications)
	group.Put("/:notificationId/seen", constraints.RequireUUID("notificationId"), handlers.NotificationHandler.MarkSeen)
	group.Put("/:userId/seen-all", constraints.RequireUUID("userId"), handlers.NotificationHandler.MarkAllSeen)
}
