// Package fare computes what a student owes the academy: monthly fares by
// concurrent course count, marginal fares when courses are added to an
// existing membership, and per-day late penalties.
//
// Every function in this package is pure. The tariff table and the current
// time are passed in by the caller; nothing here reads a clock, touches a
// database or keeps state between calls.
package fare

import (
	"errors"
	"fmt"
)

// FlatRateThreshold is the course count at which the flat tariff applies
// instead of the per-count tiers.
const FlatRateThreshold = 5

var (
	ErrNegativeFare     = errors.New("tariff fare cannot be negative")
	ErrInvalidTierCount = errors.New("course tier count must be between 1 and 4")
	ErrDuplicateTier    = errors.New("duplicate tariff tier")
)

// Tier is one entry of the academy's tariff table. Exactly three shapes
// exist: a fee tied to a specific course count, the flat rate for five or
// more courses, and the daily late-payment penalty.
type Tier interface {
	isTier()
}

// CourseCountTier is the monthly fee for exactly Courses concurrent
// enrollments, valid for counts 1 through 4.
type CourseCountTier struct {
	Courses int
	Fare    int64
}

// FlatTier is the monthly fee once a student is enrolled in five or more
// courses at once, regardless of the exact count.
type FlatTier struct {
	Fare int64
}

// LateFeeTier is the penalty charged per day (or part of a day) that a
// payment is overdue past the grace period.
type LateFeeTier struct {
	PerDay int64
}

func (CourseCountTier) isTier() {}
func (FlatTier) isTier()        {}
func (LateFeeTier) isTier()     {}

// Table is a validated tariff table. A zero Table is usable and resolves
// every lookup as a miss, which the resolvers treat as fare 0.
type Table struct {
	byCount map[int]int64
	flat    *int64
	perDay  *int64
}

// NewTable builds a Table from tiers. Malformed tiers (negative fares,
// course counts outside 1..4, duplicated entries) are rejected outright;
// an incomplete table is not an error, missing tiers simply never match.
func NewTable(tiers []Tier) (Table, error) {
	t := Table{byCount: make(map[int]int64, 4)}
	for _, tier := range tiers {
		switch v := tier.(type) {
		case CourseCountTier:
			if v.Fare < 0 {
				return Table{}, fmt.Errorf("%w: course tier %d has fare %d", ErrNegativeFare, v.Courses, v.Fare)
			}
			if v.Courses <= 0 || v.Courses >= FlatRateThreshold {
				return Table{}, fmt.Errorf("%w: got %d", ErrInvalidTierCount, v.Courses)
			}
			if _, exists := t.byCount[v.Courses]; exists {
				return Table{}, fmt.Errorf("%w: course tier %d", ErrDuplicateTier, v.Courses)
			}
			t.byCount[v.Courses] = v.Fare
		case FlatTier:
			if v.Fare < 0 {
				return Table{}, fmt.Errorf("%w: flat tier has fare %d", ErrNegativeFare, v.Fare)
			}
			if t.flat != nil {
				return Table{}, fmt.Errorf("%w: flat tier", ErrDuplicateTier)
			}
			fare := v.Fare
			t.flat = &fare
		case LateFeeTier:
			if v.PerDay < 0 {
				return Table{}, fmt.Errorf("%w: late fee tier has rate %d", ErrNegativeFare, v.PerDay)
			}
			if t.perDay != nil {
				return Table{}, fmt.Errorf("%w: late fee tier", ErrDuplicateTier)
			}
			rate := v.PerDay
			t.perDay = &rate
		default:
			return Table{}, fmt.Errorf("unknown tariff tier %T", tier)
		}
	}
	return t, nil
}

// CourseFare returns the fee for exactly n concurrent courses and whether
// such a tier exists.
func (t Table) CourseFare(n int) (int64, bool) {
	fare, ok := t.byCount[n]
	return fare, ok
}

// FlatFare returns the five-or-more flat fee and whether it is configured.
func (t Table) FlatFare() (int64, bool) {
	if t.flat == nil {
		return 0, false
	}
	return *t.flat, true
}

// LateFeePerDay returns the configured daily penalty rate and whether it
// is configured.
func (t Table) LateFeePerDay() (int64, bool) {
	if t.perDay == nil {
		return 0, false
	}
	return *t.perDay, true
}
