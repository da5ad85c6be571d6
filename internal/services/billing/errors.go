package billing

import "errors"

var (
	ErrNoCoursesSelected = errors.New("no courses selected")
	ErrNoMembership      = errors.New("student has no membership to renew")
	ErrInvalidTariff     = errors.New("invalid tariff entry")
)
