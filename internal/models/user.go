package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles within the academy.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User statuses.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type User struct {
	gorm.Model
	Email               string  `gorm:"uniqueIndex;not null"`
	Password            string  `gorm:"not null"`
	Name                string  `gorm:"not null"`
	Phone               string  `gorm:"uniqueIndex;not null"`
	Role                string  `gorm:"default:'student'"`
	Status              string  `gorm:"default:'active'"`
	EmergencyContact    string
	LastLoginAt         time.Time
	FailedLoginAttempts int `gorm:"default:0"`
	AccountLockoutUntil *time.Time
	TokenVersion        int `gorm:"default:1"`

	Membership *Membership `gorm:"foreignKey:StudentID"`
}
