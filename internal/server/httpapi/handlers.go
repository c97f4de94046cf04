package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/httpx"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/dmitrijs2005/storeauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

const (
	msgServerError    = "Server error"
	msgInvalidPayload = "Invalid request payload"
)

type signUpRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthHandler translates HTTP requests into AccountService calls and sets or
// clears the session cookie.
type AuthHandler struct {
	accounts *services.AccountService
	sessions *auth.Sessions
	logger   logging.Logger
}

// NewAuthHandler returns a handler; mount it with RegisterRoutes.
func NewAuthHandler(accounts *services.AccountService, sessions *auth.Sessions, logger logging.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, logger: logger}
}

// RegisterRoutes mounts the auth routes on r. otpLimit guards the routes that
// send or consume mailed codes.
func (h *AuthHandler) RegisterRoutes(r chi.Router, otpLimit func(http.Handler) http.Handler) {
	r.Post("/signup", h.signup)
	r.Post("/signin", h.signin)
	r.Post("/logout", h.logout)

	r.Post("/verify-otp", h.verifyOTP)
	r.With(otpLimit).Post("/resend-otp", h.resendOTP)

	r.With(otpLimit).Post("/forgetPassword", h.forgetPassword)
	r.With(otpLimit).Post("/resetPassword", h.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verify(h.sessions.TokenAuth(), jwtauth.TokenFromCookie))
		r.Use(h.authenticator)

		r.Get("/checkAuth", h.checkAuth)
		r.Post("/change-password", h.changePassword)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.Fail(w, http.StatusBadRequest, msgInvalidPayload, httpx.CodeValidation)
		return false
	}
	return true
}

func viewBody(a *models.Account) httpx.Body {
	v := a.View()
	return httpx.Body{
		"_id":      v.ID,
		"fullName": v.FullName,
		"email":    v.Email,
		"role":     v.Role,
	}
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.accounts.SignUp(r.Context(), services.SignUpInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		httpx.Error(w, err, msgServerError)
		return
	}
	httpx.Success(w, http.StatusCreated, res.Message, nil)
}

func (h *AuthHandler) signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, err, msgServerError)
		return
	}
	h.sessions.SetCookie(w, session.Token)
	httpx.Success(w, http.StatusOK, "Login successful", viewBody(session.Account))
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	httpx.Success(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.accounts.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		httpx.Error(w, err, msgServerError)
		return
	}
	httpx.Success(w, http.StatusOK, "OTP verified successfully. You can now log in.", nil)
}

func (h *AuthHandler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.accounts.ResendOTP(r.Context(), req.Email); err != nil {
		httpx.Error(w, err, msgServerError)
		return
	}
	httpx.Success(w, http.StatusOK, "OTP resent successfully. Please check your email.", nil)
}

func (h *AuthHandler) forgetPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		httpx.Error(w, err, msgServerError)
		return
	}
	httpx.Success(w, http.StatusOK, "OTP sent to your email for password reset.", nil)
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.accounts.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		httpx.Error(w, err, msgServerError)
		return
	}
	h.sessions.SetCookie(w, session.Token)
	httpx.Success(w, http.StatusOK, "Password reset successful. You are now logged in.", httpx.Body{
		"user": session.Account.View(),
	})
}

func (h *AuthHandler) checkAuth(w http.ResponseWriter, r *http.Request) {
	account, ok := AccountFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, msgNoToken, httpx.CodeUnauthenticated)
		return
	}
	httpx.Success(w, http.StatusOK, "User authenticated successfully", httpx.Body{
		"user": account.View(),
	})
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	account, ok := AccountFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, msgNoToken, httpx.CodeUnauthenticated)
		return
	}

	var req changePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.Error(w, err, msgServerError)
		return
	}
	httpx.Success(w, http.StatusOK, "Password updated successfully", nil)
}
