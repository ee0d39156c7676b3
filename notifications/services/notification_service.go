package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/gofrs/uuid"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/events"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	notificationsErrors "github.com/qolzam/telar/apps/social/notifications/errors"
	"github.com/qolzam/telar/apps/social/notifications/models"
	"github.com/qolzam/telar/apps/social/notifications/repository"
	sharedInterfaces "github.com/qolzam/telar/apps/social/shared/interfaces"
)

// SubjectCreated is the event subject for newly recorded notifications.
const SubjectCreated = "notifications.created"

// NotificationService defines the interface for notification operations
type NotificationService interface {
	sharedInterfaces.Notifier

	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkSeen(ctx context.Context, notificationID string) (*models.Notification, error)
	MarkAllSeen(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher events.Publisher
}

// NewNotificationService creates a notification service. A nil publisher drops events.
func NewNotificationService(repo repository.NotificationRepository, publisher events.Publisher) NotificationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &notificationService{repo: repo, publisher: publisher}
}

// Notify persists an unseen notification, then publishes it. A publish failure
// is logged and does not undo the stored notification.
func (s *notificationService) Notify(ctx context.Context, input sharedInterfaces.NotificationInput) error {
	if strings.TrimSpace(input.UserID) == "" {
		return fmt.Errorf("%w: recipient is required", notificationsErrors.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	notification := &models.Notification{
		ID:        uuid.Must(uuid.NewV4()).String(),
		User:      input.UserID,
		Text:      input.Text,
		Link:      input.Link,
		PostLink:  input.PostLink,
		Image:     input.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		log.ErrorWithContext(ctx, "Repository.Create failed for notification: %v", err)
		return notificationsErrors.WrapDatabaseError("create notification", err)
	}

	event := models.CreatedEvent{
		ID:        notification.ID,
		User:      notification.User,
		Text:      notification.Text,
		Link:      notification.Link,
		PostLink:  notification.PostLink,
		CreatedAt: notification.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, SubjectCreated, event); err != nil {
		log.WarnWithContext(ctx, "Publishing notification %s failed: %v", notification.ID, err)
	}
	return nil
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	notifications, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		log.ErrorWithContext(ctx, "Repository.FindByUser failed for user %s: %v", userID, err)
		return nil, notificationsErrors.WrapDatabaseError("list notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkSeen(ctx context.Context, notificationID string) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, dbi.ErrNoDocuments) {
			return nil, notificationsErrors.ErrNotificationNotFound
		}
		return nil, notificationsErrors.WrapDatabaseError("find notification", err)
	}
	if notification.IsSeen {
		return notification, nil
	}

	notification.IsSeen = true
	notification.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, notification); err != nil {
		if errors.Is(err, dbi.ErrNoDocuments) {
			return nil, notificationsErrors.ErrNotificationNotFound
		}
		return nil, notificationsErrors.WrapDatabaseError("update notification", err)
	}
	return notification, nil
}

func (s *notificationService) MarkAllSeen(ctx context.Context, userID string) (int64, error) {
	updated, err := s.repo.MarkAllSeen(ctx, userID, time.Now().UTC())
	if err != nil {
		log.ErrorWithContext(ctx, "Repository.MarkAllSeen failed for user %s: %v", userID, err)
		return 0, notificationsErrors.WrapDatabaseError("mark notifications seen", err)
	}
	return updated, nil
}
