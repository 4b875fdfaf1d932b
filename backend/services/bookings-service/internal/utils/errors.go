// bookings-service/internal/utils/errors.go

package utils

import "errors"

/*
Sentinel errors for booking-service domain logic. Every AppError returned by
the services wraps one of these, so callers can do:

	if errors.Is(err, ErrInvalidTransition) { ... }
*/
var (
	ErrBookingNotFound   = errors.New("booking_not_found")
	ErrPaymentNotFound   = errors.New("payment_not_found")
	ErrUnitNotFound      = errors.New("unit_not_found")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrUnitConflict      = errors.New("unit_conflict")
	ErrValidation        = errors.New("validation_failed")
)
