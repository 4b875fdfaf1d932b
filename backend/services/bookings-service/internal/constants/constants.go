package constants

import "time"

// Booking limits
const (
	MaxCancellationReasonLength = 500
	MaxNotesLength              = 2000
)

// Cache / side effects
const (
	BookingCacheTTL       = 10 * time.Minute
	BookingCacheKeyPrefix = "booking:"
	SideEffectTimeout     = 5 * time.Second
)

// Common concurrency conflict / row-version conflict messages
const (
	ErrMsgRowVersionConflictRefresh = "The booking has changed, please refresh"
	ErrMsgPaymentChangedRefresh     = "The payment has changed, please refresh"
	ErrMsgUnitChangedRefresh        = "The unit is being updated, please retry"
)

// Background jobs / HTTP limits
const (
	StaleHoldJobTimeout = 2 * time.Minute
	HealthCheckTimeout  = 2 * time.Second
	RateLimitRequests   = 120
	RateLimitWindow     = time.Minute
	RateLimitKeyPrefix  = "ratelimit:bookings:"
)
