// Package event covers the academy's showcases, socials and workshops:
// admin-published events that students can register for while seats last.
package event

import (
	"context"
	"errors"
	"time"

	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/notification"
)

var (
	ErrEventFull    = errors.New("event is at capacity")
	ErrEventStarted = errors.New("event has already started")
	ErrInvalidEvent = errors.New("invalid event")
)

type Service interface {
	Create(ctx context.Context, e *models.Event) error
	Update(ctx context.Context, e *models.Event) error
	Publish(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	ListUpcoming(ctx context.Context, now time.Time, includeUnpublished bool) ([]*models.Event, error)

	Register(ctx context.Context, eventID, studentID uint, now time.Time) error
	Unregister(ctx context.Context, eventID, studentID uint) error
	MyRegistrations(ctx context.Context, studentID uint) ([]*models.EventRegistration, error)
}

type service struct {
	repo     repositories.EventRepository
	notifier notification.Service
}

func NewService(repo repositories.EventRepository, notifier notification.Service) Service {
	if repo == nil {
		panic("event repository is required")
	}
	return &service{repo: repo, notifier: notifier}
}

func (s *service) Create(ctx context.Context, e *models.Event) error {
	if e.Title == "" || e.StartsAt.IsZero() {
		return ErrInvalidEvent
	}
	return s.repo.Create(ctx, e)
}

func (s *service) Update(ctx context.Context, e *models.Event) error {
	if e.Title == "" || e.StartsAt.IsZero() {
		return ErrInvalidEvent
	}
	return s.repo.Update(ctx, e)
}

func (s *service) Publish(ctx context.Context, id uint) error {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	e.Published = true
	return s.repo.Update(ctx, e)
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListUpcoming(ctx context.Context, now time.Time, includeUnpublished bool) ([]*models.Event, error) {
	return s.repo.ListUpcoming(ctx, now, !includeUnpublished)
}

func (s *service) Register(ctx context.Context, eventID, studentID uint, now time.Time) error {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !e.StartsAt.After(now) {
		return ErrEventStarted
	}
	if e.Capacity > 0 {
		registered, err := s.repo.CountRegistrations(ctx, eventID)
		if err != nil {
			return err
		}
		if registered >= int64(e.Capacity) {
			return ErrEventFull
		}
	}

	err = s.repo.Register(ctx, &models.EventRegistration{EventID: eventID, StudentID: studentID})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, studentID, models.NotificationEvent,
			"You're registered: "+e.Title,
			"Starts "+e.StartsAt.Format("Mon Jan 2 15:04")+" at "+e.Location+".")
	}
	return nil
}

func (s *service) Unregister(ctx context.Context, eventID, studentID uint) error {
	return s.repo.Unregister(ctx, eventID, studentID)
}

func (s *service) MyRegistrations(ctx context.Context, studentID uint) ([]*models.EventRegistration, error) {
	return s.repo.ListRegistrationsByStudent(ctx, studentID)
}
