package auth

import (
	"net/http"

	"github.com/dmitrijs2005/storeauth/internal/common"
)

// cookie builds the session cookie. Outside development mode the cookie is
// Secure with SameSite=None so the storefront can call the API cross-site.
func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
		Secure:   !s.devMode,
		SameSite: http.SameSiteNoneMode,
	}
	if s.devMode {
		c.SameSite = http.SameSiteStrictMode
	}
	return c
}

// SetCookie writes token into the session cookie, expiring with the token.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.cookie(token, int(s.validity.Seconds())))
}

// ClearCookie overwrites the session cookie with an already expired one
// (Max-Age=0 on the wire).
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}
