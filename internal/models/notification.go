package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification kinds.
const (
	NotificationEnrollment = "enrollment"
	NotificationPayment    = "payment"
	NotificationEvent      = "event"
	NotificationGeneral    = "general"
)

type Notification struct {
	gorm.Model
	UserID uint   `gorm:"index;not null"`
	Kind   string `gorm:"not null"`
	Title  string `gorm:"not null"`
	Body   string
	ReadAt *time.Time

	User *User `gorm:"foreignKey:UserID"`
}

// PushToken is a device token registered for push delivery. Delivery
// itself happens out of process; we only keep the registry current.
type PushToken struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	Token    string `gorm:"uniqueIndex;not null"`
	Platform string `gorm:"not null"` // ios, android
	LastSeen time.Time
}
