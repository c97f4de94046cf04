package httpx

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/storeauth/internal/common"
)

// Machine-readable discriminators carried in the "code" field.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeInvalidOrExpired   = "INVALID_OR_EXPIRED_OTP"
	CodeIncorrectOTP       = "INCORRECT_OTP"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

type mapping struct {
	kind   error
	status int
	code   string
}

var mappings = []mapping{
	{common.ErrValidation, http.StatusBadRequest, CodeValidation},
	{common.ErrConflict, http.StatusConflict, CodeConflict},
	{common.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{common.ErrInvalidCredentials, http.StatusBadRequest, CodeInvalidCredentials},
	{common.ErrEmailNotVerified, http.StatusForbidden, CodeEmailNotVerified},
	{common.ErrInvalidOrExpired, http.StatusBadRequest, CodeInvalidOrExpired},
	{common.ErrIncorrectCode, http.StatusBadRequest, CodeIncorrectOTP},
	{common.ErrAlreadyVerified, http.StatusBadRequest, CodeAlreadyVerified},
	{common.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
	{common.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
}

// StatusFromError maps a domain error to its HTTP status and code.
// Anything unrecognised, delivery failures included, is a 500.
func StatusFromError(err error) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.kind) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// Error writes err in the envelope. The message is the one attached with
// common.WithMessage; bare errors get fallback so driver detail never leaks.
func Error(w http.ResponseWriter, err error, fallback string) {
	status, code := StatusFromError(err)
	Fail(w, status, common.MessageOf(err, fallback), code)
}
