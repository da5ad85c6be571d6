package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses. A request starts pending; only an approved
// enrollment counts toward the student's membership.
const (
	EnrollmentPending   = "pending"
	EnrollmentApproved  = "approved"
	EnrollmentRejected  = "rejected"
	EnrollmentCancelled = "cancelled"
)

type Enrollment struct {
	gorm.Model
	StudentID  uint   `gorm:"index:idx_enrollment_student_course;not null"`
	CourseID   uint   `gorm:"index:idx_enrollment_student_course;not null"`
	Status     string `gorm:"default:'pending';index"`
	QuotedFare int64  `gorm:"not null;default:0"` // marginal amount quoted at request time
	DecidedBy  *uint
	DecidedAt  *time.Time
	Note       string

	Student *User   `gorm:"foreignKey:StudentID"`
	Course  *Course `gorm:"foreignKey:CourseID"`
}
