// Package enrollment runs the request/approve lifecycle that turns a
// student's wish to join a course into membership state. Approval is what
// commits money: it bumps the membership course count, sets the first due
// date for new members and tells the student.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/billing"
	"compas/internal/services/notification"
)

type Service interface {
	// Request opens a pending enrollment for the student, with the
	// marginal fare quoted at request time.
	Request(ctx context.Context, studentID, courseID uint, now time.Time) (*models.Enrollment, error)

	// Approve confirms a pending enrollment and applies it to the
	// student's membership.
	Approve(ctx context.Context, enrollmentID, adminID uint, now time.Time) (*models.Enrollment, error)

	Reject(ctx context.Context, enrollmentID, adminID uint, note string, now time.Time) (*models.Enrollment, error)

	// Cancel withdraws a pending request; only the owning student can.
	Cancel(ctx context.Context, enrollmentID, studentID uint, now time.Time) (*models.Enrollment, error)

	GetByID(ctx context.Context, id uint) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]*models.Enrollment, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Enrollment, int64, error)
}

type service struct {
	enrollmentRepo repositories.EnrollmentRepository
	courseRepo     repositories.CourseRepository
	membershipRepo repositories.MembershipRepository
	billing        billing.Service
	notifier       notification.Service
}

func NewService(
	enrollmentRepo repositories.EnrollmentRepository,
	courseRepo repositories.CourseRepository,
	membershipRepo repositories.MembershipRepository,
	billingSvc billing.Service,
	notifier notification.Service,
) Service {
	if enrollmentRepo == nil || courseRepo == nil || membershipRepo == nil || billingSvc == nil {
		panic("enrollment service requires enrollment, course and membership repos plus billing")
	}
	return &service{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		membershipRepo: membershipRepo,
		billing:        billingSvc,
		notifier:       notifier,
	}
}

func (s *service) Request(ctx context.Context, studentID, courseID uint, now time.Time) (*models.Enrollment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Active {
		return nil, ErrCourseInactive
	}

	open, err := s.enrollmentRepo.ExistsOpen(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrAlreadyRequested
	}

	if course.Capacity > 0 {
		enrolled, err := s.enrollmentRepo.CountApprovedByCourse(ctx, courseID)
		if err != nil {
			return nil, err
		}
		if enrolled >= int64(course.Capacity) {
			return nil, ErrCourseFull
		}
	}

	quote, err := s.billing.QuoteEnrollment(ctx, studentID, 1, now)
	if err != nil {
		return nil, err
	}

	e := &models.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		Status:     models.EnrollmentPending,
		QuotedFare: quote.Base,
	}
	if err := s.enrollmentRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Approve(ctx context.Context, enrollmentID, adminID uint, now time.Time) (*models.Enrollment, error) {
	e, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.Status != models.EnrollmentPending {
		return nil, ErrNotPending
	}

	// Capacity can have filled up since the request.
	course, err := s.courseRepo.GetByID(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	if course.Capacity > 0 {
		enrolled, err := s.enrollmentRepo.CountApprovedByCourse(ctx, e.CourseID)
		if err != nil {
			return nil, err
		}
		if enrolled >= int64(course.Capacity) {
			return nil, ErrCourseFull
		}
	}

	if err := s.applyToMembership(ctx, e.StudentID, now); err != nil {
		return nil, err
	}

	e.Status = models.EnrollmentApproved
	e.DecidedBy = &adminID
	e.DecidedAt = &now
	if err := s.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		title := fmt.Sprintf("Enrollment approved: %s", course.Name)
		_ = s.notifier.Notify(ctx, e.StudentID, models.NotificationEnrollment, title,
			"See you in class. Your monthly fare has been updated.")
	}
	return e, nil
}

func (s *service) Reject(ctx context.Context, enrollmentID, adminID uint, note string, now time.Time) (*models.Enrollment, error) {
	e, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.Status != models.EnrollmentPending {
		return nil, ErrNotPending
	}

	e.Status = models.EnrollmentRejected
	e.DecidedBy = &adminID
	e.DecidedAt = &now
	e.Note = note
	if err := s.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, e.StudentID, models.NotificationEnrollment,
			"Enrollment not approved", note)
	}
	return e, nil
}

func (s *service) Cancel(ctx context.Context, enrollmentID, studentID uint, now time.Time) (*models.Enrollment, error) {
	e, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.StudentID != studentID {
		return nil, ErrNotOwner
	}
	if e.Status != models.EnrollmentPending {
		return nil, ErrNotPending
	}

	e.Status = models.EnrollmentCancelled
	e.DecidedAt = &now
	if err := s.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	return s.enrollmentRepo.GetByID(ctx, id)
}

func (s *service) ListByStudent(ctx context.Context, studentID uint) ([]*models.Enrollment, error) {
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}

func (s *service) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Enrollment, int64, error) {
	return s.enrollmentRepo.ListByStatus(ctx, status, offset, limit)
}

// applyToMembership bumps the student's course count, creating the
// membership with its first due date when this is their first approved
// enrollment.
func (s *service) applyToMembership(ctx context.Context, studentID uint, now time.Time) error {
	_, err := s.membershipRepo.GetByStudentID(ctx, studentID)
	switch {
	case err == nil:
		return s.membershipRepo.AdjustCourseCount(ctx, studentID, 1)
	case errors.Is(err, repositories.ErrMembershipNotFound):
		firstDue := now.AddDate(0, 1, 0)
		return s.membershipRepo.Create(ctx, &models.Membership{
			StudentID:      studentID,
			CourseCount:    1,
			NextPaymentDue: &firstDue,
			Status:         models.MembershipActive,
		})
	default:
		return err
	}
}
