package enrollment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/billing"
)

type MockEnrollmentRepo struct {
	mock.Mock
}

func (m *MockEnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEnrollmentRepo) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) Update(ctx context.Context, e *models.Enrollment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEnrollmentRepo) ListByStudent(ctx context.Context, studentID uint) ([]*models.Enrollment, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Enrollment, int64, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Enrollment), args.Get(1).(int64), args.Error(2)
}

func (m *MockEnrollmentRepo) CountActiveByStudent(ctx context.Context, studentID uint) (int64, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnrollmentRepo) CountApprovedByCourse(ctx context.Context, courseID uint) (int64, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnrollmentRepo) ExistsOpen(ctx context.Context, studentID, courseID uint) (bool, error) {
	args := m.Called(ctx, studentID, courseID)
	return args.Bool(0), args.Error(1)
}

type MockCourseRepo struct {
	mock.Mock
}

func (m *MockCourseRepo) Create(ctx context.Context, c *models.Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourseRepo) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepo) Update(ctx context.Context, c *models.Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourseRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepo) List(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.Course, int64, error) {
	args := m.Called(ctx, activeOnly, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Course), args.Get(1).(int64), args.Error(2)
}

func (m *MockCourseRepo) ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Course, error) {
	args := m.Called(ctx, instructorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
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

func newTestService() (*MockEnrollmentRepo, *MockCourseRepo, *MockMembershipRepo, *MockBilling, Service) {
	enrollments := new(MockEnrollmentRepo)
	courses := new(MockCourseRepo)
	memberships := new(MockMembershipRepo)
	billingSvc := new(MockBilling)
	svc := NewService(enrollments, courses, memberships, billingSvc, nil)
	return enrollments, courses, memberships, billingSvc, svc
}

func TestRequest(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("opens a pending request with the quoted marginal fare", func(t *testing.T) {
		enrollments, courses, _, billingSvc, svc := newTestService()

		courses.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Course{Style: "salsa", Capacity: 20, Active: true}, nil)
		enrollments.On("ExistsOpen", mock.Anything, uint(1), uint(7)).Return(false, nil)
		enrollments.On("CountApprovedByCourse", mock.Anything, uint(7)).Return(int64(12), nil)
		billingSvc.On("QuoteEnrollment", mock.Anything, uint(1), 1, now).
			Return(&billing.Quote{StudentID: 1, Base: 5000, Total: 5000}, nil)
		enrollments.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Enrollment) bool {
			return e.Status == models.EnrollmentPending && e.QuotedFare == 5000
		})).Return(nil)

		e, err := svc.Request(context.Background(), 1, 7, now)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentPending, e.Status)
		assert.Equal(t, int64(5000), e.QuotedFare)
		enrollments.AssertExpectations(t)
	})

	t.Run("rejects a full course", func(t *testing.T) {
		enrollments, courses, _, _, svc := newTestService()

		courses.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Course{Capacity: 10, Active: true}, nil)
		enrollments.On("ExistsOpen", mock.Anything, uint(1), uint(7)).Return(false, nil)
		enrollments.On("CountApprovedByCourse", mock.Anything, uint(7)).Return(int64(10), nil)

		_, err := svc.Request(context.Background(), 1, 7, now)
		assert.ErrorIs(t, err, ErrCourseFull)
	})

	t.Run("rejects a duplicate open request", func(t *testing.T) {
		enrollments, courses, _, _, svc := newTestService()

		courses.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Course{Capacity: 10, Active: true}, nil)
		enrollments.On("ExistsOpen", mock.Anything, uint(1), uint(7)).Return(true, nil)

		_, err := svc.Request(context.Background(), 1, 7, now)
		assert.ErrorIs(t, err, ErrAlreadyRequested)
	})

	t.Run("rejects an inactive course", func(t *testing.T) {
		_, courses, _, _, svc := newTestService()

		courses.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Course{Capacity: 10, Active: false}, nil)

		_, err := svc.Request(context.Background(), 1, 7, now)
		assert.ErrorIs(t, err, ErrCourseInactive)
	})
}

func TestApprove(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("first approval creates membership with a due date a month out", func(t *testing.T) {
		enrollments, courses, memberships, _, svc := newTestService()

		pending := &models.Enrollment{StudentID: 1, CourseID: 7, Status: models.EnrollmentPending}
		enrollments.On("GetByID", mock.Anything, uint(3)).Return(pending, nil)
		courses.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Course{Name: "Salsa I", Capacity: 20, Active: true}, nil)
		enrollments.On("CountApprovedByCourse", mock.Anything, uint(7)).Return(int64(5), nil)
		memberships.On("GetByStudentID", mock.Anything, uint(1)).
			Return(nil, repositories.ErrMembershipNotFound)
		memberships.On("Create", mock.Anything, mock.MatchedBy(func(m *models.Membership) bool {
			return m.StudentID == 1 && m.CourseCount == 1 &&
				m.NextPaymentDue != nil && m.NextPaymentDue.Equal(now.AddDate(0, 1, 0))
		})).Return(nil)
		enrollments.On("Update", mock.Anything, pending).Return(nil)

		e, err := svc.Approve(context.Background(), 3, 99, now)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentApproved, e.Status)
		require.NotNil(t, e.DecidedBy)
		assert.Equal(t, uint(99), *e.DecidedBy)
		memberships.AssertExpectations(t)
	})

	t.Run("later approvals only bump the course count", func(t *testing.T) {
		enrollments, courses, memberships, _, svc := newTestService()

		pending := &models.Enrollment{StudentID: 1, CourseID: 8, Status: models.EnrollmentPending}
		enrollments.On("GetByID", mock.Anything, uint(4)).Return(pending, nil)
		courses.On("GetByID", mock.Anything, uint(8)).
			Return(&models.Course{Name: "Ballet", Capacity: 20, Active: true}, nil)
		enrollments.On("CountApprovedByCourse", mock.Anything, uint(8)).Return(int64(5), nil)
		memberships.On("GetByStudentID", mock.Anything, uint(1)).
			Return(&models.Membership{StudentID: 1, CourseCount: 2}, nil)
		memberships.On("AdjustCourseCount", mock.Anything, uint(1), 1).Return(nil)
		enrollments.On("Update", mock.Anything, pending).Return(nil)

		_, err := svc.Approve(context.Background(), 4, 99, now)
		require.NoError(t, err)
		memberships.AssertExpectations(t)
	})

	t.Run("cannot approve a decided enrollment", func(t *testing.T) {
		enrollments, _, _, _, svc := newTestService()

		enrollments.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Enrollment{Status: models.EnrollmentRejected}, nil)

		_, err := svc.Approve(context.Background(), 5, 99, now)
		assert.ErrorIs(t, err, ErrNotPending)
	})
}

func TestCancel(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("owner cancels a pending request", func(t *testing.T) {
		enrollments, _, _, _, svc := newTestService()

		pending := &models.Enrollment{StudentID: 1, Status: models.EnrollmentPending}
		enrollments.On("GetByID", mock.Anything, uint(3)).Return(pending, nil)
		enrollments.On("Update", mock.Anything, pending).Return(nil)

		e, err := svc.Cancel(context.Background(), 3, 1, now)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentCancelled, e.Status)
	})

	t.Run("someone else cannot cancel it", func(t *testing.T) {
		enrollments, _, _, _, svc := newTestService()

		enrollments.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Enrollment{StudentID: 1, Status: models.EnrollmentPending}, nil)

		_, err := svc.Cancel(context.Background(), 3, 2, now)
		assert.ErrorIs(t, err, ErrNotOwner)
	})
}
