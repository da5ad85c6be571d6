package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"compas/internal/fare"
	"compas/internal/models"
	"compas/internal/repositories"
)

var fareInitialScheme = fare.InitialScheme{BaseFare: 22000, PerExtraCourse: 6000}

type MockTariffRepo struct {
	mock.Mock
}

func (m *MockTariffRepo) GetAll(ctx context.Context) ([]models.TariffEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TariffEntry), args.Error(1)
}

func (m *MockTariffRepo) GetByID(ctx context.Context, id uint) (*models.TariffEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TariffEntry), args.Error(1)
}

func (m *MockTariffRepo) Upsert(ctx context.Context, entry *models.TariffEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTariffRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

func standardTariffs() []models.TariffEntry {
	return []models.TariffEntry{
		{Kind: models.TariffCourseCount, NumCourses: 1, Fare: 20000},
		{Kind: models.TariffCourseCount, NumCourses: 2, Fare: 25000},
		{Kind: models.TariffCourseCount, NumCourses: 3, Fare: 30000},
		{Kind: models.TariffCourseCount, NumCourses: 4, Fare: 32000},
		{Kind: models.TariffCourseFlat, Fare: 35000},
		{Kind: models.TariffLateFee, Fare: 800},
	}
}

func TestQuoteEnrollment(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		studentID  uint
		newCourses int
		setupMock  func(*MockTariffRepo, *MockMembershipRepo)
		want       *Quote
		wantErr    error
	}{
		{
			name:       "first enrollment of three courses",
			studentID:  1,
			newCourses: 3,
			setupMock: func(tr *MockTariffRepo, mr *MockMembershipRepo) {
				tr.On("GetAll", mock.Anything).Return(standardTariffs(), nil)
				mr.On("GetByStudentID", mock.Anything, uint(1)).
					Return(nil, repositories.ErrMembershipNotFound)
			},
			want: &Quote{
				StudentID:  1,
				Kind:       QuoteKindEnrollment,
				NewCourses: 3,
				Base:       30000,
				Total:      30000,
			},
		},
		{
			name:       "adding one course to two only charges the difference",
			studentID:  2,
			newCourses: 1,
			setupMock: func(tr *MockTariffRepo, mr *MockMembershipRepo) {
				tr.On("GetAll", mock.Anything).Return(standardTariffs(), nil)
				mr.On("GetByStudentID", mock.Anything, uint(2)).
					Return(&models.Membership{StudentID: 2, CourseCount: 2}, nil)
			},
			want: &Quote{
				StudentID:    2,
				Kind:         QuoteKindEnrollment,
				PriorCourses: 2,
				NewCourses:   1,
				Base:         5000,
				Total:        5000,
			},
		},
		{
			name:       "overdue membership settles penalty with the new charge",
			studentID:  3,
			newCourses: 1,
			setupMock: func(tr *MockTariffRepo, mr *MockMembershipRepo) {
				due := now.AddDate(0, 0, -7)
				tr.On("GetAll", mock.Anything).Return(standardTariffs(), nil)
				mr.On("GetByStudentID", mock.Anything, uint(3)).
					Return(&models.Membership{StudentID: 3, CourseCount: 2, NextPaymentDue: &due}, nil)
			},
			want: &Quote{
				StudentID:    3,
				Kind:         QuoteKindEnrollment,
				PriorCourses: 2,
				NewCourses:   1,
				Base:         5000,
				// due was 7 days ago, grace is 5, so 2 days late
				Penalty:  1600,
				DaysLate: 2,
				Total:    6600,
			},
		},
		{
			name:       "zero courses rejected",
			studentID:  4,
			newCourses: 0,
			wantErr:    ErrNoCoursesSelected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tariffRepo := new(MockTariffRepo)
			membershipRepo := new(MockMembershipRepo)
			if tt.setupMock != nil {
				tt.setupMock(tariffRepo, membershipRepo)
			}

			svc := NewService(tariffRepo, membershipRepo, Config{}, nil)
			got, err := svc.QuoteEnrollment(context.Background(), tt.studentID, tt.newCourses, now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			// DueDate equality is covered by the penalty fields.
			got.DueDate = nil
			assert.Equal(t, tt.want, got)

			tariffRepo.AssertExpectations(t)
			membershipRepo.AssertExpectations(t)
		})
	}
}

func TestQuoteEnrollment_InitialScheme(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tariffRepo := new(MockTariffRepo)
	membershipRepo := new(MockMembershipRepo)
	tariffRepo.On("GetAll", mock.Anything).Return(standardTariffs(), nil)
	membershipRepo.On("GetByStudentID", mock.Anything, uint(1)).
		Return(nil, repositories.ErrMembershipNotFound)

	cfg := Config{InitialScheme: &fareInitialScheme}
	svc := NewService(tariffRepo, membershipRepo, cfg, nil)

	got, err := svc.QuoteEnrollment(context.Background(), 1, 2, now)
	require.NoError(t, err)
	assert.Equal(t, int64(28000), got.Base, "base 22000 plus one 6000 increment")

	// A student with prior courses stays on the regular table.
	membershipRepo2 := new(MockMembershipRepo)
	membershipRepo2.On("GetByStudentID", mock.Anything, uint(2)).
		Return(&models.Membership{StudentID: 2, CourseCount: 2}, nil)
	svc2 := NewService(tariffRepo, membershipRepo2, cfg, nil)

	got2, err := svc2.QuoteEnrollment(context.Background(), 2, 1, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got2.Base)
}

func TestQuoteRenewal(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("on time renewal has no penalty", func(t *testing.T) {
		due := now.AddDate(0, 0, 3)
		tariffRepo := new(MockTariffRepo)
		membershipRepo := new(MockMembershipRepo)
		tariffRepo.On("GetAll", mock.Anything).Return(standardTariffs(), nil)
		membershipRepo.On("GetByStudentID", mock.Anything, uint(1)).
			Return(&models.Membership{StudentID: 1, CourseCount: 3, NextPaymentDue: &due}, nil)

		svc := NewService(tariffRepo, membershipRepo, Config{}, nil)
		got, err := svc.QuoteRenewal(context.Background(), 1, now)
		require.NoError(t, err)

		assert.Equal(t, int64(30000), got.Base)
		assert.Zero(t, got.Penalty)
		assert.Equal(t, int64(30000), got.Total)
	})

	t.Run("late renewal includes the per day penalty", func(t *testing.T) {
		due := now.AddDate(0, 0, -7)
		tariffRepo := new(MockTariffRepo)
		membershipRepo := new(MockMembershipRepo)
		tariffRepo.On("GetAll", mock.Anything).Return(standardTariffs(), nil)
		membershipRepo.On("GetByStudentID", mock.Anything, uint(1)).
			Return(&models.Membership{StudentID: 1, CourseCount: 5, NextPaymentDue: &due}, nil)

		svc := NewService(tariffRepo, membershipRepo, Config{}, nil)
		got, err := svc.QuoteRenewal(context.Background(), 1, now)
		require.NoError(t, err)

		assert.Equal(t, int64(35000), got.Base, "five courses bill the flat rate")
		assert.Equal(t, 2, got.DaysLate)
		assert.Equal(t, int64(1600), got.Penalty)
		assert.Equal(t, int64(36600), got.Total)
	})

	t.Run("no membership", func(t *testing.T) {
		tariffRepo := new(MockTariffRepo)
		membershipRepo := new(MockMembershipRepo)
		membershipRepo.On("GetByStudentID", mock.Anything, uint(9)).
			Return(nil, repositories.ErrMembershipNotFound)

		svc := NewService(tariffRepo, membershipRepo, Config{}, nil)
		_, err := svc.QuoteRenewal(context.Background(), 9, now)
		assert.ErrorIs(t, err, ErrNoMembership)
	})
}

func TestUpsertTariff_Validation(t *testing.T) {
	tariffRepo := new(MockTariffRepo)
	membershipRepo := new(MockMembershipRepo)
	svc := NewService(tariffRepo, membershipRepo, Config{}, nil)

	tests := []struct {
		name  string
		entry models.TariffEntry
		valid bool
	}{
		{name: "valid course tier", entry: models.TariffEntry{Kind: models.TariffCourseCount, NumCourses: 2, Fare: 25000}, valid: true},
		{name: "valid flat tier", entry: models.TariffEntry{Kind: models.TariffCourseFlat, Fare: 35000}, valid: true},
		{name: "valid late fee", entry: models.TariffEntry{Kind: models.TariffLateFee, Fare: 800}, valid: true},
		{name: "unknown kind", entry: models.TariffEntry{Kind: "weekend_pass", Fare: 1}},
		{name: "negative fare", entry: models.TariffEntry{Kind: models.TariffCourseFlat, Fare: -5}},
		{name: "course tier out of range", entry: models.TariffEntry{Kind: models.TariffCourseCount, NumCourses: 7, Fare: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := tt.entry
			if tt.valid {
				tariffRepo.On("Upsert", mock.Anything, &entry).Return(nil).Once()
			}
			err := svc.UpsertTariff(context.Background(), &entry)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTariff)
			}
		})
	}
	tariffRepo.AssertExpectations(t)
}
