package handlers

import (
	"log"
	"net/http"
	"time"

	"lingoclash/internal/auth"
	"lingoclash/internal/security"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	auth    *auth.Manager
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authManager *auth.Manager, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		auth:    authManager,
		limiter: limiter,
	}
}

// RequireAuth is middleware that requires a valid browser session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || !m.auth.ValidateSession(cookie.Value) {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit throttles requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
