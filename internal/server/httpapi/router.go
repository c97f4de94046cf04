// Package httpapi exposes AccountService over HTTP. Routes live under
// /api/auth and answer with the httpx envelope.
package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/dmitrijs2005/storeauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/storeauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const requestTimeout = 60 * time.Second

// NewRouter builds the HTTP handler: base middleware, CORS for the
// configured storefront origins, /health, and the auth routes under
// /api/auth with the OTP routes throttled by limiter.
func NewRouter(
	accounts *services.AccountService,
	sessions *auth.Sessions,
	limiter ratelimit.Limiter,
	cfg *config.Config,
	logger logging.Logger,
) http.Handler {
	logger = logger.With("module", "http")

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	h := NewAuthHandler(accounts, sessions, logger)
	otpLimit := ratelimit.Middleware(limiter, cfg.RateLimitWindow, logger)

	r.Route("/api/auth", func(r chi.Router) {
		h.RegisterRoutes(r, otpLimit)
	})

	return r
}
