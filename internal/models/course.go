package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Name         string `gorm:"not null;uniqueIndex"`
	Style        string `gorm:"not null"` // salsa, ballet, folklore, ...
	Description  string
	InstructorID uint   `gorm:"index;not null"`
	Weekday      int    `gorm:"not null"` // time.Weekday, 0 = Sunday
	StartTime    string `gorm:"not null"` // "18:30", academy local time
	DurationMin  int    `gorm:"not null;default:60"`
	Capacity     int    `gorm:"not null;default:20"`
	Active       bool   `gorm:"default:true;index"`

	Instructor *User `gorm:"foreignKey:InstructorID"`
}
