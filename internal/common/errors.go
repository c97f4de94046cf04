// Package common defines shared constants and sentinel errors used across
// the service, repository and transport layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Input errors.
	ErrValidation = errors.New("validation error")

	// Credential errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// OTP lifecycle errors.
	ErrInvalidOrExpired = errors.New("invalid or expired otp")
	ErrIncorrectCode    = errors.New("incorrect otp")
	ErrAlreadyVerified  = errors.New("email already verified")

	// Rate limiting.
	ErrRateLimited = errors.New("too many requests")

	// Outbound notification failed after the OTP was stored.
	ErrDelivery = errors.New("delivery failed")

	// Catch-all for unexpected store or crypto failures.
	ErrInternal = errors.New("internal error")
)

// Error attaches a client-facing message to one of the sentinel kinds above.
// errors.Is(err, kind) keeps working through Unwrap.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// WithMessage wraps kind with a stable message that is safe to show to clients.
func WithMessage(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// MessageOf returns the client message carried by err, or fallback when err
// does not carry one.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
