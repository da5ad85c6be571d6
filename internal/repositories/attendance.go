package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"compas/internal/models"
)

var ErrAttendanceExists = errors.New("attendance already recorded for this class date")

// AttendanceRepository owns per-class check-in records.
type AttendanceRepository interface {
	Create(ctx context.Context, a *models.Attendance) error
	ListByCourse(ctx context.Context, courseID uint, classDate time.Time) ([]*models.Attendance, error)
	ListByStudent(ctx context.Context, studentID uint, from, to time.Time) ([]*models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrAttendanceExists
		}
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	return nil
}

func (r *attendanceRepository) ListByCourse(ctx context.Context, courseID uint, classDate time.Time) ([]*models.Attendance, error) {
	var records []*models.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ? AND class_date = ?", courseID, classDate).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list course attendance: %w", err)
	}
	return records, nil
}

func (r *attendanceRepository) ListByStudent(ctx context.Context, studentID uint, from, to time.Time) ([]*models.Attendance, error) {
	var records []*models.Attendance
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ? AND class_date >= ? AND class_date < ?", studentID, from, to).
		Order("class_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list student attendance: %w", err)
	}
	return records, nil
}
