package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/constants"
	internal_utils "github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/utils"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
)

// storageError turns a repository failure into an AppError. Integrity
// violations become CONFLICT or VALIDATION; AppErrors pass through.
func storageError(msg string, err error) error {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repositories.ErrUniqueViolation):
		return utils.NewConflictError("Conflicting record already exists", nil,
			fmt.Errorf("%w: %v", internal_utils.ErrUnitConflict, err))
	case errors.Is(err, repositories.ErrIntegrityViolation):
		return utils.NewValidationError("Invalid reference or value", nil,
			fmt.Errorf("%w: %v", internal_utils.ErrValidation, err))
	}
	return utils.NewInternalError(msg, err)
}

func bookingNotFound() error {
	return utils.NewNotFoundError("Booking not found", internal_utils.ErrBookingNotFound)
}

func paymentNotFound() error {
	return utils.NewNotFoundError("Payment not found", internal_utils.ErrPaymentNotFound)
}

func unitNotFound() error {
	return utils.NewNotFoundError("Unit not found", internal_utils.ErrUnitNotFound)
}

func rowVersionConflict(msg string) error {
	if msg == "" {
		msg = constants.ErrMsgRowVersionConflictRefresh
	}
	return &utils.AppError{
		StatusCode: http.StatusConflict,
		Code:       utils.ErrCodeRowVersionConflict,
		Message:    msg,
		Err:        utils.ErrRowVersionConflict,
	}
}

// InvalidTransitionDetails is returned to callers alongside INVALID_TRANSITION.
type InvalidTransitionDetails struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Allowed []string `json:"allowed"`
}

func invalidTransition[S ~string](kind string, from, to S, allowed []S) error {
	details := InvalidTransitionDetails{From: string(from), To: string(to), Allowed: make([]string, 0, len(allowed))}
	for _, s := range allowed {
		details.Allowed = append(details.Allowed, string(s))
	}
	return utils.NewInvalidTransitionError(
		fmt.Sprintf("%s cannot move from %s to %s", kind, from, to),
		details,
		internal_utils.ErrInvalidTransition,
	)
}
