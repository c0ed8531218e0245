package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// SubjectFunc resolves the throttled subject for a request: the authenticated
// user id (empty when anonymous) and the client IP.
type SubjectFunc func(*http.Request) (userID, ip string)

// Middleware enforces policy on every request through it, answering 429 with
// a Retry-After header when the limit is exceeded.
func Middleware(l *Limiter, policy Policy, subject SubjectFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ip := subject(r)
			ok, retryAfter := l.Allow(policy.Key(userID, ip), policy.Limit)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Too Many Attempts."})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
