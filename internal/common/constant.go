// Package common contains shared constants and sentinel errors used across
// storeauth components.
package common

// SessionCookieName is the cookie that carries the signed session token.
// jwtauth.TokenFromCookie looks the token up under the same name.
const SessionCookieName = "jwt"
