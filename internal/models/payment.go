package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment methods and statuses.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"

	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// PaymentKind distinguishes what the payment covers.
const (
	PaymentKindEnrollment = "enrollment"
	PaymentKindRenewal    = "renewal"
)

type Payment struct {
	gorm.Model
	StudentID     uint   `gorm:"index;not null"`
	Kind          string `gorm:"not null"`
	BaseAmount    int64  `gorm:"not null"`
	Penalty       int64  `gorm:"not null;default:0"`
	DaysLate      int    `gorm:"not null;default:0"`
	TotalAmount   int64  `gorm:"not null"`
	Method        string `gorm:"not null"`
	Status        string `gorm:"not null;index"`
	ReceiptNumber string `gorm:"uniqueIndex;not null"`
	CardReference string // provider charge id for card payments
	PaidAt        time.Time

	Student *User `gorm:"foreignKey:StudentID"`
}
