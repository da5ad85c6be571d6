package payment

import "errors"

var (
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrCardTokenRequired = errors.New("card token is required for card payments")
	ErrChargeFailed      = errors.New("card charge failed")
)
