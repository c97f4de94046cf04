// Package auth issues stateless session tokens and moves them through the
// "jwt" cookie.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the account id next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Sessions signs and checks HS256 session tokens. The same key backs the
// jwtauth verifier used by the HTTP middleware.
type Sessions struct {
	secret    []byte
	validity  time.Duration
	devMode   bool
	now       func() time.Time
	tokenAuth *jwtauth.JWTAuth
}

// NewSessions signs with secret; tokens and cookies live for validity.
func NewSessions(secret string, validity time.Duration, devMode bool) *Sessions {
	return &Sessions{
		secret:    []byte(secret),
		validity:  validity,
		devMode:   devMode,
		now:       time.Now,
		tokenAuth: jwtauth.New("HS256", []byte(secret), nil),
	}
}

// TokenAuth exposes the verifier for jwtauth.Verify.
func (s *Sessions) TokenAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

// Issue returns a signed token for accountID that expires after the configured validity.
func (s *Sessions) Issue(accountID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: accountID,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// UserIDFromClaims extracts the account id from claims decoded by jwtauth.
func UserIDFromClaims(claims map[string]any) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}
