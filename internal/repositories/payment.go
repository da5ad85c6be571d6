package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"compas/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository owns recorded payments.
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByReceipt(ctx context.Context, receiptNumber string) (*models.Payment, error)
	ListByStudent(ctx context.Context, studentID uint, offset, limit int) ([]*models.Payment, int64, error)
	List(ctx context.Context, from, to time.Time, offset, limit int) ([]*models.Payment, int64, error)
	TotalCollected(ctx context.Context, from, to time.Time) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) GetByReceipt(ctx context.Context, receiptNumber string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("receipt_number = ?", receiptNumber).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by receipt: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByStudent(ctx context.Context, studentID uint, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}
	err := query.Offset(offset).Limit(limit).Order("paid_at DESC").Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (r *paymentRepository) List(ctx context.Context, from, to time.Time, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("paid_at >= ? AND paid_at < ?", from, to)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}
	err := query.Preload("Student").Offset(offset).Limit(limit).Order("paid_at DESC").Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (r *paymentRepository) TotalCollected(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ? AND paid_at >= ? AND paid_at < ?", models.PaymentCompleted, from, to).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}
