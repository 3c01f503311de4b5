package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/eduquest/eduquest-api/internal/pkg/response"
)

// RateLimit returns middleware enforcing a fixed-window per-client request
// limit backed by Redis, so the counter is shared across instances.
// With a nil client the limiter is a no-op.
func RateLimit(client *redis.Client, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil || perMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := rateLimitKey(r)

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				// Fail open: a broken limiter must not take the API down.
				log.Error().Err(err).Msg("Rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(r.Context(), key, time.Minute)
			}

			if count > int64(perMinute) {
				response.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	// Prefer the authenticated user, fall back to client IP.
	if id := GetUserID(r.Context()); id != uuid.Nil {
		return fmt.Sprintf("ratelimit:user:%s:%d", id, time.Now().Unix()/60)
	}
	return fmt.Sprintf("ratelimit:ip:%s:%d", getClientIP(r), time.Now().Unix()/60)
}
