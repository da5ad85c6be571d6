package models

import (
	"time"

	"gorm.io/gorm"
)

// Attendance marks.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

type Attendance struct {
	gorm.Model
	CourseID  uint      `gorm:"index:idx_attendance_class,unique;not null"`
	StudentID uint      `gorm:"index:idx_attendance_class,unique;not null"`
	ClassDate time.Time `gorm:"index:idx_attendance_class,unique;not null"`
	Mark      string    `gorm:"not null"`
	MarkedBy  uint      `gorm:"not null"`

	Course  *Course `gorm:"foreignKey:CourseID"`
	Student *User   `gorm:"foreignKey:StudentID"`
}
