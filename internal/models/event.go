package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	Title       string    `gorm:"not null"`
	Description string
	Location    string
	StartsAt    time.Time `gorm:"not null;index"`
	Capacity    int       `gorm:"not null;default:0"` // 0 = unlimited
	Published   bool      `gorm:"default:false;index"`
}

type EventRegistration struct {
	gorm.Model
	EventID   uint `gorm:"index:idx_event_student,unique;not null"`
	StudentID uint `gorm:"index:idx_event_student,unique;not null"`

	Event   *Event `gorm:"foreignKey:EventID"`
	Student *User  `gorm:"foreignKey:StudentID"`
}
