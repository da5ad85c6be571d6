package models

import (
	"fmt"

	"gorm.io/gorm"

	"compas/internal/fare"
)

// Tariff entry kinds, matching the three tier shapes of the fare table.
const (
	TariffCourseCount = "course_count"
	TariffCourseFlat  = "course_5"
	TariffLateFee     = "late_fee"
)

// TariffEntry is the persisted form of one fare table tier. The typed
// representation lives in the fare package; this row exists so admins can
// manage the schedule through the API.
type TariffEntry struct {
	gorm.Model
	Kind       string `gorm:"not null;index"`
	NumCourses int    `gorm:"not null;default:0"` // meaningful for course_count only
	Fare       int64  `gorm:"not null"`
}

// Tier converts the row into its typed fare tier.
func (e TariffEntry) Tier() (fare.Tier, error) {
	switch e.Kind {
	case TariffCourseCount:
		return fare.CourseCountTier{Courses: e.NumCourses, Fare: e.Fare}, nil
	case TariffCourseFlat:
		return fare.FlatTier{Fare: e.Fare}, nil
	case TariffLateFee:
		return fare.LateFeeTier{PerDay: e.Fare}, nil
	default:
		return nil, fmt.Errorf("unknown tariff kind %q", e.Kind)
	}
}

// FareTable converts a set of rows into a validated fare table.
func FareTable(entries []TariffEntry) (fare.Table, error) {
	tiers := make([]fare.Tier, 0, len(entries))
	for _, e := range entries {
		tier, err := e.Tier()
		if err != nil {
			return fare.Table{}, err
		}
		tiers = append(tiers, tier)
	}
	return fare.NewTable(tiers)
}
