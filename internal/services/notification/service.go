// Package notification keeps students and staff informed: in-app
// notifications backed by the database, plus a push-token registry for a
// delivery worker that runs out of process.
package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"compas/internal/models"
	"compas/internal/repositories"
)

type Service interface {
	// Notify records an in-app notification for a user.
	Notify(ctx context.Context, userID uint, kind, title, body string) error

	ListForUser(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uint) error

	RegisterPushToken(ctx context.Context, userID uint, token, platform string) error
}

type service struct {
	repo repositories.NotificationRepository
}

func NewService(repo repositories.NotificationRepository) Service {
	if repo == nil {
		panic("notification repository is required")
	}
	return &service{repo: repo}
}

func (s *service) Notify(ctx context.Context, userID uint, kind, title, body string) error {
	n := &models.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	log.Printf("notify user %d (%s): %s", userID, kind, title)
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]*models.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, offset, limit)
}

func (s *service) MarkRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *service) RegisterPushToken(ctx context.Context, userID uint, token, platform string) error {
	if token == "" {
		return fmt.Errorf("push token is required")
	}
	if platform != "ios" && platform != "android" {
		return fmt.Errorf("unsupported platform: %s", platform)
	}
	return s.repo.SavePushToken(ctx, &models.PushToken{
		UserID:   userID,
		Token:    token,
		Platform: platform,
		LastSeen: time.Now(),
	})
}
