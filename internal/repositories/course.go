package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"compas/internal/models"
)

var ErrCourseNotFound = errors.New("course not found")

// CourseRepository owns the course catalog.
type CourseRepository interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, c *models.Course) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.Course, int64, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, c *models.Course) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Instructor").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, c *models.Course) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *courseRepository) List(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.Course, int64, error) {
	var courses []*models.Course
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Course{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}
	err := query.Offset(offset).Limit(limit).Order("name").Find(&courses).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

func (r *courseRepository) ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Course, error) {
	var courses []*models.Course
	err := r.db.WithContext(ctx).
		Where("instructor_id = ? AND active = ?", instructorID, true).
		Order("weekday, start_time").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor courses: %w", err)
	}
	return courses, nil
}
