package repositories

import (
	"context"
	"fmt"

	"storefront/internal/apperrors"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data access.
// Every read and write after Create is scoped to the recipient.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByUserID(ctx context.Context, userID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

// NewGORMNotificationRepository creates a new instance of GORMNotificationRepository.
func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{db: db}
}

func (r *GORMNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification for user %s: %w", notification.UserID, err)
	}
	return nil
}

// GetByUserID returns the notifications of userID, newest first.
func (r *GORMNotificationRepository) GetByUserID(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications of user %s: %w", userID, err)
	}
	return notifications, nil
}

func (r *GORMNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications of user %s: %w", userID, err)
	}
	return n, nil
}

func (r *GORMNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("notification", id)
	}
	return nil
}

func (r *GORMNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications of user %s read: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GORMNotificationRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("notification", id)
	}
	return nil
}

func (r *GORMNotificationRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, "user_id = ?", userID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete notifications of user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
