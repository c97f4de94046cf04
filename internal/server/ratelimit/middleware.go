package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/httpx"
)

const rejectMessage = "Too many OTP requests, try again later."

// Middleware throttles by client address. Mount it after middleware.RealIP so
// RemoteAddr carries the forwarded address. Limiter failures let the request
// through.
func Middleware(limiter Limiter, period time.Duration, logger logging.Logger) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(period.Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			ok, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn(r.Context(), "rate limiter unavailable, letting request through", "error", err, "client", key)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Retry-After", retryAfter)
				httpx.Fail(w, http.StatusTooManyRequests, rejectMessage, httpx.CodeRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
