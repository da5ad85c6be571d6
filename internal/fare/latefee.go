package fare

import (
	"errors"
	"fmt"
	"time"
)

// Fallbacks used when the tariff table does not carry a late fee tier or
// the caller does not override the policy. 800 colones per day matches the
// academy's standing rate.
const (
	DefaultGraceDays     = 5
	DefaultLateFeePerDay = int64(800)
	hoursPerCalendarDay  = 24
)

var (
	ErrZeroTime      = errors.New("due date and evaluation time must be set")
	ErrNegativeGrace = errors.New("grace period cannot be negative")
)

// LatePolicy controls the grace window and the per-day rate used when the
// tariff table has no late fee tier.
type LatePolicy struct {
	GraceDays      int
	FallbackPerDay int64
}

// DefaultLatePolicy returns the academy's standing policy: five calendar
// days of grace, 800 per day fallback.
func DefaultLatePolicy() LatePolicy {
	return LatePolicy{GraceDays: DefaultGraceDays, FallbackPerDay: DefaultLateFeePerDay}
}

// LateResult is the outcome of a late fee computation.
type LateResult struct {
	Late     bool  `json:"late"`
	DaysLate int   `json:"days_late"`
	Penalty  int64 `json:"penalty"`
}

// ComputeLateFee determines whether a payment evaluated at now is overdue
// against due under the policy, and what the penalty is.
//
// The effective deadline is the due date plus the grace period in calendar
// days. Past it, days late round UP: arriving one hour past the deadline
// already counts as a full day. The academy charges for any part of a day
// late; that ceiling must not be softened to truncation.
func ComputeLateFee(due, now time.Time, p LatePolicy, t Table) (LateResult, error) {
	if due.IsZero() || now.IsZero() {
		return LateResult{}, ErrZeroTime
	}
	if p.GraceDays < 0 {
		return LateResult{}, fmt.Errorf("%w: got %d", ErrNegativeGrace, p.GraceDays)
	}
	if p.FallbackPerDay < 0 {
		return LateResult{}, fmt.Errorf("%w: fallback rate %d", ErrNegativeFare, p.FallbackPerDay)
	}

	deadline := due.AddDate(0, 0, p.GraceDays)
	if !now.After(deadline) {
		return LateResult{}, nil
	}

	overdue := now.Sub(deadline)
	day := hoursPerCalendarDay * time.Hour
	days := int(overdue / day)
	if overdue%day != 0 {
		days++
	}

	rate := p.FallbackPerDay
	if perDay, ok := t.LateFeePerDay(); ok {
		rate = perDay
	}

	return LateResult{
		Late:     true,
		DaysLate: days,
		Penalty:  int64(days) * rate,
	}, nil
}
