// Package api wires the web action gateway's HTTP surface: the two web
// action mounts (main and experimental), health/readiness probes, and
// metrics, behind the teacher's CORS/security-header/logging middleware
// chain.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// APIError is the structured JSON error envelope used by this package's
// own endpoints (health, metrics) — distinct from the web action mounts'
// own {"error","code"} envelope, which internal/gateway.Handler writes
// directly.
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail holds the code and message inside the error envelope.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorJSON writes a structured JSON error response.
func errorJSON(w http.ResponseWriter, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{
		Error: APIErrorDetail{Code: code, Message: message},
	}); err != nil {
		slog.Error("failed to encode JSON error response", "error", err)
	}
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// securityHeaders adds standard HTTP security headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "0") // modern browsers: CSP replaces this
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		next.ServeHTTP(w, r)
	})
}

// WebActionHandler runs the six-stage gateway pipeline for one mount.
// internal/gateway.Handler satisfies this.
type WebActionHandler interface {
	Handle(w http.ResponseWriter, r *http.Request, pathSuffix, transactionID string)
}

// Server holds the dependencies for the gateway's HTTP surface.
type Server struct {
	Main         WebActionHandler // mounted at /api/v1/web/*
	Experimental WebActionHandler // mounted at /experimental/web/*, nil to disable

	CORSOrigins []string // allowed CORS origins. Defaults to ["http://localhost:3000"].

	RateLimit       *RateLimitConfig // per-IP transport-level rate limiting. Nil disables it.
	RateLimiterStop func()           // populated by NewRouter when rate limiting is enabled.

	AuthHealth    HealthChecker // auth store health (e.g. pool.Ping). Nil = skip.
	EntityHealth  HealthChecker // entity store health. Nil = skip.
	InvokerHealth HealthChecker // invoker transport health. Nil = skip.
}

// NewRouter creates a configured chi router serving the gateway's two web
// action mounts plus health and metrics.
func NewRouter(srv *Server) chi.Router {
	r := chi.NewRouter()

	corsOrigins := srv.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:3000"}
	}

	hasWildcard := false
	for _, o := range corsOrigins {
		if o == "*" {
			hasWildcard = true
			break
		}
	}

	corsOpts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	if hasWildcard {
		// Dynamic origin: reflect the request Origin when credentials are
		// enabled, since browsers reject the combination of a literal "*"
		// origin with AllowCredentials.
		slog.Warn("CORS: wildcard origin '*' with AllowCredentials — using dynamic origin reflection")
		corsOpts.AllowOriginFunc = func(_ *http.Request, _ string) bool {
			return true
		}
	} else {
		corsOpts.AllowedOrigins = corsOrigins
	}

	r.Use(cors.Handler(corsOpts))
	r.Use(securityHeaders)
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if srv.RateLimit != nil {
		rl, mw := RateLimit(*srv.RateLimit)
		srv.RateLimiterStop = rl.Stop
		r.Use(mw)
	}

	r.Get("/health", srv.HandleHealth)
	r.Get("/health/live", srv.HandleHealthLive)
	r.Get("/health/ready", srv.HandleHealthReady)
	r.Get("/metrics", srv.HandleMetrics)

	if srv.Main != nil {
		mountWebAction(r, "/api/v1/web", srv.Main)
	}
	if srv.Experimental != nil {
		mountWebAction(r, "/experimental/web", srv.Experimental)
	}

	return r
}

// mountWebAction wires a wildcard route under prefix to h.Handle, passing
// the URL path beneath the prefix as pathSuffix and the request's
// RequestID-middleware-assigned id as the error envelope's transaction id.
func mountWebAction(r chi.Router, prefix string, h WebActionHandler) {
	r.Route(prefix, func(r chi.Router) {
		r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
			pathSuffix := chi.URLParam(r, "*")
			h.Handle(w, r, pathSuffix, RequestIDFromContext(r.Context()))
		})
	})
}
