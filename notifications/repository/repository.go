package repository

import (
	"context"
	"fmt"
	"time"

	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/notifications/models"
)

// NotificationsCollection is the document collection holding notifications.
const NotificationsCollection = "notifications"

// NotificationRepository defines the notification-specific operations over the document store.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	// FindByUser returns the recipient's notifications, newest first
	FindByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	Update(ctx context.Context, notification *models.Notification) error
	// MarkAllSeen flags every unseen notification of userID and returns how many changed
	MarkAllSeen(ctx context.Context, userID string, at time.Time) (int64, error)
}

type documentRepository struct {
	db dbi.Repository
}

// NewDocumentRepository creates a NotificationRepository backed by the shared document store
func NewDocumentRepository(db dbi.Repository) NotificationRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, notification *models.Notification) error {
	result := <-r.db.Save(ctx, NotificationsCollection, notification.ID, notification)
	if result.Error != nil {
		return fmt.Errorf("failed to create notification: %w", result.Error)
	}
	return nil
}

func (r *documentRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	result := <-r.db.FindOne(ctx, NotificationsCollection, dbi.ByID(id))
	if err := result.Error(); err != nil {
		return nil, err
	}

	var notification models.Notification
	if err := result.Decode(&notification); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	return &notification, nil
}

func (r *documentRepository) FindByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	cursor := <-r.db.Find(ctx, NotificationsCollection, dbi.Where("user", userID), &dbi.FindOptions{
		SortField: "createdAt",
		Direction: dbi.SortDescending,
		SortCast:  dbi.CastTimestamp,
	})
	defer cursor.Close()

	notifications := make([]*models.Notification, 0)
	for cursor.Next() {
		var notification models.Notification
		if err := cursor.Decode(&notification); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		notifications = append(notifications, &notification)
	}
	if err := cursor.Error(); err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	return notifications, nil
}

func (r *documentRepository) Update(ctx context.Context, notification *models.Notification) error {
	result := <-r.db.Replace(ctx, NotificationsCollection, notification.ID, notification)
	if result.Error != nil {
		return fmt.Errorf("failed to update notification %s: %w", notification.ID, result.Error)
	}
	return nil
}

func (r *documentRepository) MarkAllSeen(ctx context.Context, userID string, at time.Time) (int64, error) {
	query := dbi.Where("user", userID).And("isSeen", false)
	result := <-r.db.UpdateFields(ctx, NotificationsCollection, query, map[string]interface{}{
		"isSeen":    true,
		"updatedAt": at,
	})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications seen: %w", result.Error)
	}
	updated, _ := result.Result.(int64)
	return updated, nil
}
