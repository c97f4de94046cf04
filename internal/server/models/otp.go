package models

import "time"

// Purpose scopes an OTP to the flow that issued it.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeReset  Purpose = "reset"
)

// OTP is a hashed one-time code bound to an account and a purpose.
type OTP struct {
	ID        string
	AccountID string
	Purpose   Purpose
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code can no longer be accepted at now.
func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
