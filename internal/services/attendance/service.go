// Package attendance records who showed up to class. Instructors check
// students in against their own courses; the history feeds the student's
// profile page.
package attendance

import (
	"context"
	"errors"
	"time"

	"compas/internal/models"
	"compas/internal/repositories"
)

var (
	ErrInvalidMark    = errors.New("invalid attendance mark")
	ErrNotInstructing = errors.New("instructor does not teach this course")
)

type Service interface {
	// CheckIn records a student's mark for one class date. The marker
	// must be the course's instructor unless isAdmin is set.
	CheckIn(ctx context.Context, courseID, studentID, markedBy uint, isAdmin bool, classDate time.Time, mark string) error

	ListByCourse(ctx context.Context, courseID uint, classDate time.Time) ([]*models.Attendance, error)
	ListByStudent(ctx context.Context, studentID uint, from, to time.Time) ([]*models.Attendance, error)
}

type service struct {
	attendanceRepo repositories.AttendanceRepository
	courseRepo     repositories.CourseRepository
}

func NewService(attendanceRepo repositories.AttendanceRepository, courseRepo repositories.CourseRepository) Service {
	if attendanceRepo == nil || courseRepo == nil {
		panic("attendance service requires attendance and course repos")
	}
	return &service{attendanceRepo: attendanceRepo, courseRepo: courseRepo}
}

func (s *service) CheckIn(ctx context.Context, courseID, studentID, markedBy uint, isAdmin bool, classDate time.Time, mark string) error {
	switch mark {
	case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceExcused:
	default:
		return ErrInvalidMark
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !isAdmin && course.InstructorID != markedBy {
		return ErrNotInstructing
	}

	// One row per student per class; the unique index catches repeats.
	return s.attendanceRepo.Create(ctx, &models.Attendance{
		CourseID:  courseID,
		StudentID: studentID,
		ClassDate: classDate.Truncate(24 * time.Hour),
		Mark:      mark,
		MarkedBy:  markedBy,
	})
}

func (s *service) ListByCourse(ctx context.Context, courseID uint, classDate time.Time) ([]*models.Attendance, error) {
	return s.attendanceRepo.ListByCourse(ctx, courseID, classDate.Truncate(24*time.Hour))
}

func (s *service) ListByStudent(ctx context.Context, studentID uint, from, to time.Time) ([]*models.Attendance, error) {
	return s.attendanceRepo.ListByStudent(ctx, studentID, from, to)
}
