package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"compas/internal/models"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrAlreadyRegistered    = errors.New("student already registered for event")
	ErrRegistrationNotFound = errors.New("event registration not found")
)

// EventRepository owns academy events and registrations.
type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	ListUpcoming(ctx context.Context, after time.Time, publishedOnly bool) ([]*models.Event, error)
	Register(ctx context.Context, reg *models.EventRegistration) error
	Unregister(ctx context.Context, eventID, studentID uint) error
	CountRegistrations(ctx context.Context, eventID uint) (int64, error)
	ListRegistrationsByStudent(ctx context.Context, studentID uint) ([]*models.EventRegistration, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, e *models.Event) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, e *models.Event) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, after time.Time, publishedOnly bool) ([]*models.Event, error) {
	var events []*models.Event
	query := r.db.WithContext(ctx).Where("starts_at > ?", after)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Order("starts_at").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) Register(ctx context.Context, reg *models.EventRegistration) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to register for event: %w", err)
	}
	return nil
}

func (r *eventRepository) Unregister(ctx context.Context, eventID, studentID uint) error {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		Delete(&models.EventRegistration{})
	if result.Error != nil {
		return fmt.Errorf("failed to unregister from event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *eventRepository) CountRegistrations(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *eventRepository) ListRegistrationsByStudent(ctx context.Context, studentID uint) ([]*models.EventRegistration, error) {
	var regs []*models.EventRegistration
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("student_id = ?", studentID).
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list event registrations: %w", err)
	}
	return regs, nil
}
