package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/redis/go-redis/v9"
)

// RateCounter is the subset of redis commands the limiter needs.
type RateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit allows `limit` requests per fixed window for each caller. The
// caller is the tenant when the request is scoped, otherwise the client IP.
// Redis errors let the request through.
func RateLimit(rdb RateCounter, keyPrefix string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := keyPrefix + rateLimitSubject(r)

			current, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				utils.Logger.WithError(err).Warn("Rate limiter unavailable; allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if current == 1 {
				if err := rdb.Expire(ctx, key, window).Err(); err != nil {
					utils.Logger.WithError(err).Warnf("Failed to set expiry on %s", key)
				}
			}

			if current > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				utils.RespondErrorWithCode(w, http.StatusTooManyRequests, utils.ErrCodeRateLimited, "Too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitSubject(r *http.Request) string {
	if tenantID := utils.TenantIDFromContext(r.Context()); tenantID != "" {
		return "tenant:" + tenantID
	}
	if ip := utils.ClientIP(r); ip != "" {
		return "ip:" + ip
	}
	return "ip:" + r.RemoteAddr
}
