// Package course manages the academy's class catalog.
package course

import (
	"context"
	"errors"
	"fmt"

	"compas/internal/models"
	"compas/internal/repositories"
)

var ErrInvalidSchedule = errors.New("invalid course schedule")

type Service interface {
	Create(ctx context.Context, c *models.Course) error
	Update(ctx context.Context, c *models.Course) error
	Deactivate(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.Course, int64, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Course, error)
}

type service struct {
	repo repositories.CourseRepository
}

func NewService(repo repositories.CourseRepository) Service {
	if repo == nil {
		panic("course repository is required")
	}
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, c *models.Course) error {
	if err := validateSchedule(c); err != nil {
		return err
	}
	c.Active = true
	return s.repo.Create(ctx, c)
}

func (s *service) Update(ctx context.Context, c *models.Course) error {
	if err := validateSchedule(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

func (s *service) Deactivate(ctx context.Context, id uint) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.Active = false
	return s.repo.Update(ctx, c)
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.Course, int64, error) {
	return s.repo.List(ctx, activeOnly, offset, limit)
}

func (s *service) ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Course, error) {
	return s.repo.ListByInstructor(ctx, instructorID)
}

func validateSchedule(c *models.Course) error {
	if c.Weekday < 0 || c.Weekday > 6 {
		return fmt.Errorf("%w: weekday %d", ErrInvalidSchedule, c.Weekday)
	}
	if c.DurationMin <= 0 {
		return fmt.Errorf("%w: duration %d minutes", ErrInvalidSchedule, c.DurationMin)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("%w: capacity %d", ErrInvalidSchedule, c.Capacity)
	}
	return nil
}
