package server

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit returns a per-client sliding-window quota middleware admitting
// at most limit requests per window. Clients are keyed by their real IP.
// Rejected requests get 429 with Retry-After and a JSON error body.
// onLimit, when non-nil, is called for every rejected request.
func RateLimit(limit int, window time.Duration, onLimit func(r *http.Request)) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	msg := "Rate limit exceeded: " + quotaDescription(limit, window)

	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if onLimit != nil {
				onLimit(r)
			}
			writeError(w, http.StatusTooManyRequests, msg)
		}),
	)
}

// quotaDescription renders the quota as "10 per 1 minute"
func quotaDescription(limit int, window time.Duration) string {
	switch {
	case window%time.Hour == 0:
		return fmt.Sprintf("%d per %d hour", limit, window/time.Hour)
	case window%time.Minute == 0:
		return fmt.Sprintf("%d per %d minute", limit, window/time.Minute)
	default:
		return fmt.Sprintf("%d per %d second", limit, int64(math.Ceil(window.Seconds())))
	}
}
