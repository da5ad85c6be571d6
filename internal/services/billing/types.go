package billing

import (
	"time"

	"compas/internal/fare"
)

// Quote kinds.
const (
	QuoteKindEnrollment = "enrollment"
	QuoteKindRenewal    = "renewal"
)

// Quote is the amount a student owes for one transaction, with enough
// breakdown for the payment screen and the payment record.
type Quote struct {
	StudentID    uint       `json:"student_id"`
	Kind         string     `json:"kind"`
	PriorCourses int        `json:"prior_courses"`
	NewCourses   int        `json:"new_courses"`
	Base         int64      `json:"base"`
	Penalty      int64      `json:"penalty"`
	DaysLate     int        `json:"days_late"`
	Total        int64      `json:"total"`
	Clamped      bool       `json:"clamped,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

// Config holds billing behavior knobs. The zero value falls back to the
// academy's standing late policy and bills first enrollments from the
// regular tariff table.
type Config struct {
	LatePolicy fare.LatePolicy

	// InitialScheme, when set, prices a student's first enrollment with
	// the simplified base-plus-increment scheme instead of the tariff
	// table.
	InitialScheme *fare.InitialScheme
}

func (c Config) withDefaults() Config {
	if c.LatePolicy == (fare.LatePolicy{}) {
		c.LatePolicy = fare.DefaultLatePolicy()
	}
	return c
}
