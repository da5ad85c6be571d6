package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"compas/internal/models"
	"compas/internal/services/billing"
)

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepo) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepo) GetByReceipt(ctx context.Context, receiptNumber string) (*models.Payment, error) {
	args := m.Called(ctx, receiptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepo) ListByStudent(ctx context.Context, studentID uint, offset, limit int) ([]*models.Payment, int64, error) {
	args := m.Called(ctx, studentID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepo) List(ctx context.Context, from, to time.Time, offset, limit int) ([]*models.Payment, int64, error) {
	args := m.Called(ctx, from, to, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepo) TotalCollected(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type MockMembershipRepo struct {
	mock.Mock
}

func (m *MockMembershipRepo) GetByStudentID(ctx context.Context, studentID uint) (*models.Membership, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepo) Create(ctx context.Context, mem *models.Membership) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}

func (m *MockMembershipRepo) Update(ctx context.Context, mem *models.Membership) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}

func (m *MockMembershipRepo) AdjustCourseCount(ctx context.Context, studentID uint, delta int) error {
	args := m.Called(ctx, studentID, delta)
	return args.Error(0)
}

func (m *MockMembershipRepo) SetNextPaymentDue(ctx context.Context, studentID uint, due time.Time) error {
	args := m.Called(ctx, studentID, due)
	return args.Error(0)
}

func (m *MockMembershipRepo) ListPastDue(ctx context.Context, asOf time.Time) ([]*models.Membership, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Membership), args.Error(1)
}

type MockBilling struct {
	mock.Mock
}

func (m *MockBilling) QuoteEnrollment(ctx context.Context, studentID uint, newCourses int, now time.Time) (*billing.Quote, error) {
	args := m.Called(ctx, studentID, newCourses, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Quote), args.Error(1)
}

func (m *MockBilling) QuoteRenewal(ctx context.Context, studentID uint, now time.Time) (*billing.Quote, error) {
	args := m.Called(ctx, studentID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Quote), args.Error(1)
}

func (m *MockBilling) Tariffs(ctx context.Context) ([]models.TariffEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TariffEntry), args.Error(1)
}

func (m *MockBilling) UpsertTariff(ctx context.Context, entry *models.TariffEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBilling) DeleteTariff(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCharger struct {
	mock.Mock
}

func (m *MockCharger) Charge(ctx context.Context, amount int64, token, description string) (string, error) {
	args := m.Called(ctx, amount, token, description)
	return args.String(0), args.Error(1)
}

func TestSettle(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("cash payment records and advances the due date", func(t *testing.T) {
		payments := new(MockPaymentRepo)
		memberships := new(MockMembershipRepo)
		charger := new(MockCharger)
		svc := NewService(payments, memberships, new(MockBilling), nil, charger)

		due := now.AddDate(0, 0, 3)
		quote := &billing.Quote{
			StudentID: 1, Kind: billing.QuoteKindRenewal,
			Base: 30000, Total: 30000, DueDate: &due,
		}

		payments.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
			return p.StudentID == 1 &&
				p.TotalAmount == 30000 &&
				p.Method == models.PaymentMethodCash &&
				p.Status == models.PaymentCompleted &&
				p.ReceiptNumber != ""
		})).Return(nil)
		// Paying early still buys the month from the due date.
		memberships.On("SetNextPaymentDue", mock.Anything, uint(1), due.AddDate(0, 1, 0)).Return(nil)

		p, err := svc.Settle(context.Background(), quote, models.PaymentMethodCash, "", now)
		require.NoError(t, err)
		assert.Empty(t, p.CardReference)
		payments.AssertExpectations(t)
		memberships.AssertExpectations(t)
		charger.AssertNotCalled(t, "Charge")
	})

	t.Run("card payment charges the token and keeps the reference", func(t *testing.T) {
		payments := new(MockPaymentRepo)
		memberships := new(MockMembershipRepo)
		charger := new(MockCharger)
		svc := NewService(payments, memberships, new(MockBilling), nil, charger)

		quote := &billing.Quote{StudentID: 2, Kind: billing.QuoteKindEnrollment, Base: 5000, Total: 5000}

		charger.On("Charge", mock.Anything, int64(5000), "tok_visa", mock.Anything).
			Return("ch_123", nil)
		payments.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
			return p.CardReference == "ch_123" && p.Method == models.PaymentMethodCard
		})).Return(nil)
		memberships.On("SetNextPaymentDue", mock.Anything, uint(2), now.AddDate(0, 1, 0)).Return(nil)

		_, err := svc.Settle(context.Background(), quote, models.PaymentMethodCard, "tok_visa", now)
		require.NoError(t, err)
		charger.AssertExpectations(t)
	})

	t.Run("card payment without a token is rejected", func(t *testing.T) {
		svc := NewService(new(MockPaymentRepo), new(MockMembershipRepo), new(MockBilling), nil, new(MockCharger))

		quote := &billing.Quote{StudentID: 2, Total: 5000}
		_, err := svc.Settle(context.Background(), quote, models.PaymentMethodCard, "", now)
		assert.ErrorIs(t, err, ErrCardTokenRequired)
	})

	t.Run("unknown method is rejected", func(t *testing.T) {
		svc := NewService(new(MockPaymentRepo), new(MockMembershipRepo), new(MockBilling), nil, new(MockCharger))

		quote := &billing.Quote{StudentID: 2, Total: 5000}
		_, err := svc.Settle(context.Background(), quote, "barter", "", now)
		assert.ErrorIs(t, err, ErrUnsupportedMethod)
	})

	t.Run("declined charge does not record a payment", func(t *testing.T) {
		payments := new(MockPaymentRepo)
		charger := new(MockCharger)
		svc := NewService(payments, new(MockMembershipRepo), new(MockBilling), nil, charger)

		quote := &billing.Quote{StudentID: 3, Kind: billing.QuoteKindRenewal, Total: 30000}
		charger.On("Charge", mock.Anything, int64(30000), "tok_declined", mock.Anything).
			Return("", ErrChargeFailed)

		_, err := svc.Settle(context.Background(), quote, models.PaymentMethodCard, "tok_declined", now)
		assert.ErrorIs(t, err, ErrChargeFailed)
		payments.AssertNotCalled(t, "Create")
	})
}

func TestPayRenewal(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	payments := new(MockPaymentRepo)
	memberships := new(MockMembershipRepo)
	billingSvc := new(MockBilling)
	svc := NewService(payments, memberships, billingSvc, nil, new(MockCharger))

	due := now.AddDate(0, 0, -7)
	billingSvc.On("QuoteRenewal", mock.Anything, uint(1), now).Return(&billing.Quote{
		StudentID: 1, Kind: billing.QuoteKindRenewal,
		Base: 30000, Penalty: 1600, DaysLate: 2, Total: 31600, DueDate: &due,
	}, nil)
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.TotalAmount == 31600 && p.Penalty == 1600 && p.DaysLate == 2
	})).Return(nil)
	// Overdue payments restart the month from the payment date.
	memberships.On("SetNextPaymentDue", mock.Anything, uint(1), now.AddDate(0, 1, 0)).Return(nil)

	p, err := svc.PayRenewal(context.Background(), 1, models.PaymentMethodCash, "", now)
	require.NoError(t, err)
	assert.Equal(t, int64(31600), p.TotalAmount)
	payments.AssertExpectations(t)
	memberships.AssertExpectations(t)
}
