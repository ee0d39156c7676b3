package interfaces

import (
	"context"
)

// NotificationInput describes a notification for one recipient.
type NotificationInput struct {
	UserID   string
	Text     string
	Link     string
	PostLink string
	Image    string
}

// Notifier is the public interface for recording notifications.
// Users and Posts depend on this, not on the notifications service itself.
// Callers treat failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, input NotificationInput) error
}
