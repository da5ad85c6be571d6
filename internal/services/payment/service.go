// Package payment settles billing quotes: it charges tokenized cards
// through Stripe or records cash taken at the front desk, writes the
// payment record with a receipt number, and moves the student's next due
// date forward a month.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/billing"
	"compas/internal/services/notification"
)

type Service interface {
	// PayRenewal quotes and settles the student's monthly payment in one
	// step, evaluated at now.
	PayRenewal(ctx context.Context, studentID uint, method, cardToken string, now time.Time) (*models.Payment, error)

	// Settle records payment of an already-computed quote.
	Settle(ctx context.Context, quote *billing.Quote, method, cardToken string, now time.Time) (*models.Payment, error)

	GetByReceipt(ctx context.Context, receiptNumber string) (*models.Payment, error)
	HistoryForStudent(ctx context.Context, studentID uint, offset, limit int) ([]*models.Payment, int64, error)
	List(ctx context.Context, from, to time.Time, offset, limit int) ([]*models.Payment, int64, error)
}

type service struct {
	paymentRepo    repositories.PaymentRepository
	membershipRepo repositories.MembershipRepository
	billing        billing.Service
	notifier       notification.Service
	charger        CardCharger
}

func NewService(
	paymentRepo repositories.PaymentRepository,
	membershipRepo repositories.MembershipRepository,
	billingSvc billing.Service,
	notifier notification.Service,
	charger CardCharger,
) Service {
	if paymentRepo == nil || membershipRepo == nil || billingSvc == nil {
		panic("payment service requires payment repo, membership repo and billing service")
	}
	if charger == nil {
		charger = NewStripeCharger()
	}
	return &service{
		paymentRepo:    paymentRepo,
		membershipRepo: membershipRepo,
		billing:        billingSvc,
		notifier:       notifier,
		charger:        charger,
	}
}

func (s *service) PayRenewal(ctx context.Context, studentID uint, method, cardToken string, now time.Time) (*models.Payment, error) {
	quote, err := s.billing.QuoteRenewal(ctx, studentID, now)
	if err != nil {
		return nil, err
	}
	return s.Settle(ctx, quote, method, cardToken, now)
}

func (s *service) Settle(ctx context.Context, quote *billing.Quote, method, cardToken string, now time.Time) (*models.Payment, error) {
	if method != models.PaymentMethodCash && method != models.PaymentMethodCard {
		return nil, ErrUnsupportedMethod
	}

	p := &models.Payment{
		StudentID:     quote.StudentID,
		Kind:          quote.Kind,
		BaseAmount:    quote.Base,
		Penalty:       quote.Penalty,
		DaysLate:      quote.DaysLate,
		TotalAmount:   quote.Total,
		Method:        method,
		Status:        models.PaymentCompleted,
		ReceiptNumber: newReceiptNumber(),
		PaidAt:        now,
	}

	if method == models.PaymentMethodCard && quote.Total > 0 {
		if cardToken == "" {
			return nil, ErrCardTokenRequired
		}
		description := fmt.Sprintf("academy %s, receipt %s", quote.Kind, p.ReceiptNumber)
		chargeID, err := s.charger.Charge(ctx, quote.Total, cardToken, description)
		if err != nil {
			return nil, err
		}
		p.CardReference = chargeID
	}

	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err := s.advanceDueDate(ctx, quote.StudentID, quote.DueDate, now); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		title := fmt.Sprintf("Payment received: %s", formatColones(p.TotalAmount))
		body := fmt.Sprintf("Receipt %s. Your membership is paid up.", p.ReceiptNumber)
		if err := s.notifier.Notify(ctx, p.StudentID, models.NotificationPayment, title, body); err != nil {
			// The payment is committed; a lost receipt notification is
			// not worth failing the request over.
			return p, nil
		}
	}
	return p, nil
}

func (s *service) GetByReceipt(ctx context.Context, receiptNumber string) (*models.Payment, error) {
	return s.paymentRepo.GetByReceipt(ctx, receiptNumber)
}

func (s *service) HistoryForStudent(ctx context.Context, studentID uint, offset, limit int) ([]*models.Payment, int64, error) {
	return s.paymentRepo.ListByStudent(ctx, studentID, offset, limit)
}

func (s *service) List(ctx context.Context, from, to time.Time, offset, limit int) ([]*models.Payment, int64, error) {
	return s.paymentRepo.List(ctx, from, to, offset, limit)
}

// advanceDueDate moves the next payment due date one month past the
// period just paid. A payment made before the due date still buys the
// month starting at the due date, not at the payment instant.
func (s *service) advanceDueDate(ctx context.Context, studentID uint, dueDate *time.Time, now time.Time) error {
	base := now
	if dueDate != nil && dueDate.After(now) {
		base = *dueDate
	}
	next := base.AddDate(0, 1, 0)

	err := s.membershipRepo.SetNextPaymentDue(ctx, studentID, next)
	if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
		return fmt.Errorf("failed to advance due date: %w", err)
	}
	// No membership yet happens when a first enrollment is paid before
	// approval; approval sets the first due date.
	return nil
}

func newReceiptNumber() string {
	return fmt.Sprintf("RCPT-%s", uuid.New().String()[:8])
}

func formatColones(amount int64) string {
	return fmt.Sprintf("₡%d", amount)
}
