package fare

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeCount = errors.New("course count cannot be negative")
	ErrInvalidScheme = errors.New("initial enrollment scheme has negative amounts")
)

// ResolveMonthlyFare returns the monthly fee for a student enrolled in n
// concurrent courses. Counts of five or more resolve to the flat tier.
// A lookup miss (including n == 0, or a tier the administrator has not
// configured yet) resolves to 0; that is defined behavior, not an error.
// A negative count is a caller bug and is rejected.
func ResolveMonthlyFare(n int, t Table) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNegativeCount, n)
	}
	if n >= FlatRateThreshold {
		if fare, ok := t.FlatFare(); ok {
			return fare, nil
		}
		return 0, nil
	}
	if fare, ok := t.CourseFare(n); ok {
		return fare, nil
	}
	return 0, nil
}

// ComputeIncrementalFare returns the marginal amount owed when a student
// who already pays for prior courses adds selected new ones in a single
// transaction. Already-paid courses are never billed again: the charge is
// the fare for the new total minus the fare the student was committed to.
//
// The difference can come out negative when the tariff table is
// inconsistent (for example a flat rate below the tier-4 fee). That is
// clamped to 0 and reported through the clamped return so callers can flag
// the table for reconciliation; a negative charge is never returned.
func ComputeIncrementalFare(prior, selected int, t Table) (amount int64, clamped bool, err error) {
	if prior < 0 {
		return 0, false, fmt.Errorf("%w: prior enrolled count %d", ErrNegativeCount, prior)
	}
	if selected < 0 {
		return 0, false, fmt.Errorf("%w: newly selected count %d", ErrNegativeCount, selected)
	}
	if selected == 0 {
		return 0, false, nil
	}

	committed, err := ResolveMonthlyFare(prior, t)
	if err != nil {
		return 0, false, err
	}

	total := prior + selected
	var target int64
	if total >= FlatRateThreshold {
		// The flat tier caps the obligation no matter how many courses
		// the new total represents.
		target, _ = t.FlatFare()
	} else {
		target, err = ResolveMonthlyFare(total, t)
		if err != nil {
			return 0, false, err
		}
	}

	due := target - committed
	if due < 0 {
		return 0, true, nil
	}
	return due, false, nil
}

// InitialScheme is the simplified two-tier tariff used for a student's
// first-ever enrollment: a base fee covering the first course plus a fixed
// increment for each additional course in the same transaction.
type InitialScheme struct {
	BaseFare       int64
	PerExtraCourse int64
}

// Validate rejects schemes with negative amounts.
func (s InitialScheme) Validate() error {
	if s.BaseFare < 0 || s.PerExtraCourse < 0 {
		return fmt.Errorf("%w: base %d, per extra course %d", ErrInvalidScheme, s.BaseFare, s.PerExtraCourse)
	}
	return nil
}

// ComputeInitialFare returns the amount due for a first-time enrollment of
// selected courses under the given scheme. Selecting nothing costs
// nothing. The non-negative guarantee of ComputeIncrementalFare holds here
// as well.
func ComputeInitialFare(selected int, s InitialScheme) (int64, error) {
	if selected < 0 {
		return 0, fmt.Errorf("%w: newly selected count %d", ErrNegativeCount, selected)
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if selected == 0 {
		return 0, nil
	}
	return s.BaseFare + s.PerExtraCourse*int64(selected-1), nil
}
