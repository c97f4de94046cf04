package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/httpx"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const accountCtxKey contextKey = "account"

const (
	msgNoToken      = "Unauthorized - No Token Provided"
	msgInvalidToken = "Unauthorized - Invalid Token"
)

// AccountFromContext returns the account stored by the authenticator.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountCtxKey).(*models.Account)
	return a, ok && a != nil
}

// authenticator runs after jwtauth.Verify. It loads the account named by the
// token and rejects the request when either is missing.
func (h *AuthHandler) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			msg := msgInvalidToken
			if token == nil && (err == nil || errors.Is(err, jwtauth.ErrNoTokenFound)) {
				msg = msgNoToken
			}
			httpx.Fail(w, http.StatusUnauthorized, msg, httpx.CodeUnauthenticated)
			return
		}

		id, err := auth.UserIDFromClaims(claims)
		if err != nil {
			httpx.Fail(w, http.StatusUnauthorized, msgInvalidToken, httpx.CodeUnauthenticated)
			return
		}

		account, err := h.accounts.CurrentAccount(r.Context(), id)
		if err != nil {
			httpx.Error(w, err, msgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), accountCtxKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request through logger.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info(r.Context(), "request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", chiMiddleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
