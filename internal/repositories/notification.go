package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"compas/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository owns in-app notifications and push tokens.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uint) error
	SavePushToken(ctx context.Context, t *models.PushToken) error
	ListPushTokens(ctx context.Context, userID uint) ([]*models.PushToken, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) SavePushToken(ctx context.Context, t *models.PushToken) error {
	// Same token re-registered by any device refreshes its owner and
	// last-seen time instead of failing the unique index.
	var existing models.PushToken
	err := r.db.WithContext(ctx).Where("token = ?", t.Token).First(&existing).Error
	switch {
	case err == nil:
		existing.UserID = t.UserID
		existing.Platform = t.Platform
		existing.LastSeen = t.LastSeen
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to refresh push token: %w", err)
		}
		*t = existing
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
			return fmt.Errorf("failed to save push token: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up push token: %w", err)
	}
}

func (r *notificationRepository) ListPushTokens(ctx context.Context, userID uint) ([]*models.PushToken, error) {
	var tokens []*models.PushToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	return tokens, nil
}
