package models

import (
	"time"

	"gorm.io/gorm"
)

// Membership statuses.
const (
	MembershipActive    = "active"
	MembershipSuspended = "suspended"
)

// Membership is a student's paid-for state: how many courses they are a
// paying member of and when the next monthly payment falls due. One row
// per student, created when their first enrollment is approved.
type Membership struct {
	gorm.Model
	StudentID      uint   `gorm:"uniqueIndex;not null"`
	CourseCount    int    `gorm:"not null;default:0"`
	NextPaymentDue *time.Time
	Status         string `gorm:"default:'active'"`

	Student *User `gorm:"foreignKey:StudentID"`
}
