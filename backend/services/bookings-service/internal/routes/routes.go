package routes

import "strings"

const (
	// Health
	Health = "/health"

	// Bookings
	BookingsBase     = "/api/v1/bookings"
	BookingsStatuses = "/api/v1/bookings/statuses"
	BookingByID      = "/api/v1/bookings/{id}"
	BookingTimeline  = "/api/v1/bookings/{id}/timeline"
	BookingHistory   = "/api/v1/bookings/{id}/history"

	BookingApproveHold = "/api/v1/bookings/{id}/approve-hold"
	BookingRejectHold  = "/api/v1/bookings/{id}/reject-hold"
	BookingApprove     = "/api/v1/bookings/{id}/approve"
	BookingReject      = "/api/v1/bookings/{id}/reject"
	BookingCancel      = "/api/v1/bookings/{id}/cancel"
	BookingStatus      = "/api/v1/bookings/{id}/status"

	// Payments
	PaymentsBase        = "/api/v1/payments"
	PaymentsSummary     = "/api/v1/payments/summary"
	PaymentByID         = "/api/v1/payments/{id}"
	PaymentMarkReceived = "/api/v1/payments/{id}/mark-received"
	PaymentCancel       = "/api/v1/payments/{id}/cancel"

	// Units
	UnitsBase = "/api/v1/units"
	UnitByID  = "/api/v1/units/{id}"

	// Admin endpoints
	AdminUnitsBase = "/api/v1/admin/units"
	AdminUnitByID  = "/api/v1/admin/units/{id}"
	AdminUnitSold  = "/api/v1/admin/units/{id}/sold"
)

// Expand fills the {id} placeholder of a route template.
func Expand(route, id string) string {
	return strings.Replace(route, "{id}", id, 1)
}
