package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"compas/internal/models"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("student already enrolled in course")
)

// EnrollmentRepository owns enrollment requests and their lifecycle.
type EnrollmentRepository interface {
	Create(ctx context.Context, e *models.Enrollment) error
	GetByID(ctx context.Context, id uint) (*models.Enrollment, error)
	Update(ctx context.Context, e *models.Enrollment) error
	ListByStudent(ctx context.Context, studentID uint) ([]*models.Enrollment, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Enrollment, int64, error)
	CountActiveByStudent(ctx context.Context, studentID uint) (int64, error)
	CountApprovedByCourse(ctx context.Context, courseID uint) (int64, error)
	ExistsOpen(ctx context.Context, studentID, courseID uint) (bool, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.WithContext(ctx).Preload("Course").Preload("Student").First(&e, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &e, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, e *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	return nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Enrollment, int64, error) {
	var enrollments []*models.Enrollment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Enrollment{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	err := query.Preload("Course").Preload("Student").
		Offset(offset).Limit(limit).Order("created_at").
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, total, nil
}

func (r *enrollmentRepository) CountActiveByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND status = ?", studentID, models.EnrollmentApproved).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count approved enrollments: %w", err)
	}
	return count, nil
}

func (r *enrollmentRepository) CountApprovedByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentApproved).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count course enrollments: %w", err)
	}
	return count, nil
}

func (r *enrollmentRepository) ExistsOpen(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ? AND status IN ?",
			studentID, courseID, []string{models.EnrollmentPending, models.EnrollmentApproved}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}
