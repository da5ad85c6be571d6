package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"compas/internal/models"
	"compas/internal/repositories/cache"
)

var ErrMembershipNotFound = errors.New("membership not found")

// MembershipRepository owns the student's paid-for state.
type MembershipRepository interface {
	GetByStudentID(ctx context.Context, studentID uint) (*models.Membership, error)
	Create(ctx context.Context, m *models.Membership) error
	Update(ctx context.Context, m *models.Membership) error
	AdjustCourseCount(ctx context.Context, studentID uint, delta int) error
	SetNextPaymentDue(ctx context.Context, studentID uint, due time.Time) error
	ListPastDue(ctx context.Context, asOf time.Time) ([]*models.Membership, error)
}

type membershipRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewMembershipRepository(db *gorm.DB, cacheService *cache.CacheService) MembershipRepository {
	return &membershipRepository{db: db, cache: cacheService}
}

func (r *membershipRepository) GetByStudentID(ctx context.Context, studentID uint) (*models.Membership, error) {
	if r.cache != nil {
		if m, err := r.cache.GetMembership(ctx, studentID); err == nil && m != nil {
			return m, nil
		}
	}

	var m models.Membership
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.CacheMembership(ctx, &m)
	}
	return &m, nil
}

func (r *membershipRepository) Create(ctx context.Context, m *models.Membership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	r.invalidate(ctx, m.StudentID)
	return nil
}

func (r *membershipRepository) Update(ctx context.Context, m *models.Membership) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	r.invalidate(ctx, m.StudentID)
	return nil
}

func (r *membershipRepository) AdjustCourseCount(ctx context.Context, studentID uint, delta int) error {
	result := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("student_id = ?", studentID).
		UpdateColumn("course_count", gorm.Expr("GREATEST(course_count + ?, 0)", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust course count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	r.invalidate(ctx, studentID)
	return nil
}

func (r *membershipRepository) SetNextPaymentDue(ctx context.Context, studentID uint, due time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("student_id = ?", studentID).
		Update("next_payment_due", due)
	if result.Error != nil {
		return fmt.Errorf("failed to set next payment due: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	r.invalidate(ctx, studentID)
	return nil
}

func (r *membershipRepository) ListPastDue(ctx context.Context, asOf time.Time) ([]*models.Membership, error) {
	var memberships []*models.Membership
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_payment_due IS NOT NULL AND next_payment_due < ?", models.MembershipActive, asOf).
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list past due memberships: %w", err)
	}
	return memberships, nil
}

func (r *membershipRepository) invalidate(ctx context.Context, studentID uint) {
	if r.cache != nil {
		_ = r.cache.InvalidateMembership(ctx, studentID)
	}
}
