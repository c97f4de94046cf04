// Package services contains server-side business logic. This file implements
// AccountService: sign-up with email verification, sign-in, and the
// OTP-gated password reset.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/cryptox"
	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/dmitrijs2005/storeauth/internal/server/mailer"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/repomanager"
)

// Messages shown to clients. Handlers pick the success texts; error texts
// travel inside common.Error.
const (
	MsgSignupOTPSent        = "User registered successfully. OTP sent to email for verification."
	MsgSignupNoMail         = "User registered. Email not configured; account verified."
	MsgSignupMailFailed     = "User registered. Email send failed; account verified."
	msgServerError          = "Server error"
	msgDeliveryFailed       = "Could not send OTP email. Please try again later."
	msgUserNotFound         = "User not found"
	msgInvalidCredentials   = "Invalid email or password"
	msgInvalidOrExpiredOTP  = "Invalid or expired OTP"
	msgIncorrectOTP         = "Incorrect OTP"
	msgEmailRequired        = "Email is required"
	msgAllFieldsRequired    = "All fields are required"
	msgCurrentPasswordWrong = "Current password is incorrect"
	msgPasswordTooLong      = "Password must be at most 72 bytes"
)

// SignUpInput is the sign-up form.
type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SignUpResult reports how the new account left sign-up: waiting for an OTP
// or already verified because mail could not be used.
type SignUpResult struct {
	Account *models.Account
	OTPSent bool
	Message string
}

// Session is an authenticated account together with its signed token.
type Session struct {
	Account *models.Account
	Token   string
}

// AccountService owns accounts and their one-time codes.
//
// The service keeps no mutable state of its own; the repositories are the
// single source of truth. Two concurrent OTP issuances for the same account
// and purpose race on delete-then-insert and the later one wins, which only
// means the earlier code stops verifying.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	hasher      cryptox.Hasher
	sessions    *auth.Sessions
	sink        mailer.Sink
	logger      logging.Logger
	codes       cryptox.CodeGenerator
	now         func() time.Time
}

// Option customises an AccountService.
type Option func(*AccountService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *AccountService) { s.now = now }
}

// WithCodeGenerator replaces the random OTP generator.
func WithCodeGenerator(g cryptox.CodeGenerator) Option {
	return func(s *AccountService) { s.codes = g }
}

// NewAccountService wires the service. db may be nil when m is the in-memory
// manager; sink may be nil when mail is disabled.
func NewAccountService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	cfg *config.Config,
	hasher cryptox.Hasher,
	sessions *auth.Sessions,
	sink mailer.Sink,
	logger logging.Logger,
	opts ...Option,
) *AccountService {
	s := &AccountService{
		db:          db,
		repomanager: m,
		config:      cfg,
		hasher:      hasher,
		sessions:    sessions,
		sink:        sink,
		logger:      logger.With("module", "accounts"),
		codes:       cryptox.RandomCodeGenerator{},
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkPasswordLength rejects passwords the hasher cannot take.
func checkPasswordLength(password string) error {
	if len(password) > cryptox.MaxSecretBytes {
		return common.WithMessage(common.ErrValidation, msgPasswordTooLong)
	}
	return nil
}

func (s *AccountService) roleFor(email string) models.Role {
	if s.config.IsAdminEmail(email) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// internal logs err with detail and returns a sanitized ErrInternal.
func (s *AccountService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.WithMessage(common.ErrInternal, msgServerError)
}

// inTx runs fn in a transaction. The in-memory store has no *sql.DB and runs
// fn directly.
func (s *AccountService) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// findByEmail loads an account. A missing row is returned as notFound so each
// operation controls what the client learns; other failures become ErrInternal.
func (s *AccountService) findByEmail(ctx context.Context, email string, notFound error) (*models.Account, error) {
	a, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, notFound
		}
		return nil, s.internal(ctx, "account lookup", err)
	}
	return a, nil
}

// SignUp creates an unverified account and starts email verification.
// Without a mail sink, or when delivery fails, the account is verified on the
// spot so the user is never locked out. No session is issued.
func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	email := normalizeEmail(in.Email)
	if first == "" || last == "" || email == "" || in.Password == "" {
		return nil, common.WithMessage(common.ErrValidation, msgAllFieldsRequired)
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	conflict := common.WithMessage(common.ErrConflict, "User already exists")
	accounts := s.repomanager.Accounts(s.db)

	// The unique index is the real guard; this only saves a hash on the common path.
	if _, err := accounts.GetByEmail(ctx, email); err == nil {
		return nil, conflict
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, s.internal(ctx, "signup lookup", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	account, err := accounts.Create(ctx, &models.Account{
		FullName:     first + " " + last,
		Email:        email,
		PasswordHash: hash,
		Role:         s.roleFor(email),
		Verified:     false,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, conflict
		}
		return nil, s.internal(ctx, "create account", err)
	}

	message := MsgSignupNoMail
	if s.sink != nil {
		err := s.issueOTP(ctx, account, models.PurposeSignup)
		switch {
		case err == nil:
			return &SignUpResult{Account: account, OTPSent: true, Message: MsgSignupOTPSent}, nil
		case errors.Is(err, common.ErrDelivery):
			message = MsgSignupMailFailed
		default:
			return nil, err
		}
	}

	if err := accounts.SetVerified(ctx, account.ID); err != nil {
		return nil, s.internal(ctx, "auto-verify", err)
	}
	account.Verified = true
	s.logger.Info(ctx, "account auto-verified", "account_id", account.ID, "mail_configured", s.sink != nil)

	return &SignUpResult{Account: account, OTPSent: false, Message: message}, nil
}

// issueOTP replaces every code for (account, purpose) with a fresh one and
// mails it. The record is committed before delivery, so a failed send leaves
// it in place and is reported as ErrDelivery.
func (s *AccountService) issueOTP(ctx context.Context, account *models.Account, purpose models.Purpose) error {
	code, err := s.codes.Generate()
	if err != nil {
		return s.internal(ctx, "generate otp", err)
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return s.internal(ctx, "hash otp", err)
	}

	now := s.now()
	err = s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.OTPs(tx)
		if err := repo.DeleteByPurpose(ctx, account.ID, purpose); err != nil {
			return err
		}
		_, err := repo.Create(ctx, &models.OTP{
			AccountID: account.ID,
			Purpose:   purpose,
			CodeHash:  hash,
			ExpiresAt: now.Add(s.config.OTPValidityDuration),
			CreatedAt: now,
		})
		return err
	})
	if err != nil {
		return s.internal(ctx, "store otp", err)
	}

	if s.sink == nil {
		s.logger.Warn(ctx, "otp stored but mail is disabled", "account_id", account.ID, "purpose", purpose)
		return common.WithMessage(common.ErrDelivery, msgDeliveryFailed)
	}

	subject, body := mailer.OTPMessage(purpose, code, s.config.OTPValidityDuration)
	if err := s.sink.Send(ctx, account.Email, subject, body); err != nil {
		s.logger.Warn(ctx, "otp delivery failed", "account_id", account.ID, "purpose", purpose, "error", err)
		return common.WithMessage(common.ErrDelivery, msgDeliveryFailed)
	}

	s.logger.Info(ctx, "otp issued", "account_id", account.ID, "purpose", purpose)
	return nil
}

// checkOTP returns nil when code matches the latest active code for
// (account, purpose). A wrong code leaves the record in place.
func (s *AccountService) checkOTP(ctx context.Context, account *models.Account, purpose models.Purpose, code string) error {
	otp, err := s.repomanager.OTPs(s.db).FindLatestActive(ctx, account.ID, purpose, s.now())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.WithMessage(common.ErrInvalidOrExpired, msgInvalidOrExpiredOTP)
		}
		return s.internal(ctx, "otp lookup", err)
	}
	if !s.hasher.Verify(code, otp.CodeHash) {
		return common.WithMessage(common.ErrIncorrectCode, msgIncorrectOTP)
	}
	return nil
}

// VerifyOTP confirms a sign-up code, marks the account verified and consumes
// every sign-up code. The user signs in separately afterwards.
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return common.WithMessage(common.ErrValidation, "Email and OTP are required")
	}

	account, err := s.findByEmail(ctx, email, common.WithMessage(common.ErrNotFound, msgUserNotFound))
	if err != nil {
		return err
	}
	if err := s.checkOTP(ctx, account, models.PurposeSignup, code); err != nil {
		return err
	}

	err = s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).SetVerified(ctx, account.ID); err != nil {
			return err
		}
		return s.repomanager.OTPs(tx).DeleteByPurpose(ctx, account.ID, models.PurposeSignup)
	})
	if err != nil {
		return s.internal(ctx, "verify account", err)
	}

	s.logger.Info(ctx, "account verified", "account_id", account.ID)
	return nil
}

// ResendOTP issues a fresh sign-up code for an unverified account.
func (s *AccountService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return common.WithMessage(common.ErrValidation, msgEmailRequired)
	}

	account, err := s.findByEmail(ctx, email, common.WithMessage(common.ErrNotFound, msgUserNotFound))
	if err != nil {
		return err
	}
	if account.Verified {
		return common.WithMessage(common.ErrAlreadyVerified, "Email already verified")
	}
	return s.issueOTP(ctx, account, models.PurposeSignup)
}

// SignIn checks credentials and issues a session. Unknown email and wrong
// password produce the same error. The role is re-derived from the admin
// allow-list on every successful sign-in.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.WithMessage(common.ErrValidation, "Please enter all fields")
	}

	invalid := common.WithMessage(common.ErrInvalidCredentials, msgInvalidCredentials)

	account, err := s.findByEmail(ctx, email, invalid)
	if err != nil {
		return nil, err
	}
	if !account.Verified {
		return nil, common.WithMessage(common.ErrEmailNotVerified, "Email not verified")
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, invalid
	}

	if role := s.roleFor(email); role != account.Role {
		if err := s.repomanager.Accounts(s.db).UpdateRole(ctx, account.ID, role); err != nil {
			return nil, s.internal(ctx, "refresh role", err)
		}
		s.logger.Info(ctx, "role refreshed", "account_id", account.ID, "from", account.Role, "to", role)
		account.Role = role
	}

	return s.newSession(ctx, account)
}

func (s *AccountService) newSession(ctx context.Context, account *models.Account) (*Session, error) {
	token, err := s.sessions.Issue(account.ID)
	if err != nil {
		return nil, s.internal(ctx, "issue session", err)
	}
	return &Session{Account: account, Token: token}, nil
}

// CurrentAccount resolves the account behind an authenticated session. An
// account that no longer exists is treated as unauthenticated.
func (s *AccountService) CurrentAccount(ctx context.Context, accountID string) (*models.Account, error) {
	unauthenticated := common.WithMessage(common.ErrUnauthenticated, "Unauthorized - No Token Provided")
	if accountID == "" {
		return nil, unauthenticated
	}
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.WithMessage(common.ErrUnauthenticated, msgUserNotFound)
		}
		return nil, s.internal(ctx, "session lookup", err)
	}
	return account, nil
}

// ForgotPassword mails a reset code. Unknown emails are reported as not found.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return common.WithMessage(common.ErrValidation, msgEmailRequired)
	}

	account, err := s.findByEmail(ctx, email, common.WithMessage(common.ErrNotFound, msgUserNotFound))
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, account, models.PurposeReset)
}

// ResetPassword replaces the password when code matches the active reset
// code, consumes every reset code and signs the user in.
func (s *AccountService) ResetPassword(ctx context.Context, email, code, newPassword string) (*Session, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return nil, common.WithMessage(common.ErrValidation, msgAllFieldsRequired)
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return nil, err
	}

	account, err := s.findByEmail(ctx, email, common.WithMessage(common.ErrInvalidOrExpired, "Invalid email or OTP"))
	if err != nil {
		return nil, err
	}
	if err := s.checkOTP(ctx, account, models.PurposeReset, code); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	err = s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).UpdatePassword(ctx, account.ID, hash); err != nil {
			return err
		}
		return s.repomanager.OTPs(tx).DeleteByPurpose(ctx, account.ID, models.PurposeReset)
	})
	if err != nil {
		return nil, s.internal(ctx, "reset password", err)
	}
	account.PasswordHash = hash

	s.logger.Info(ctx, "password reset", "account_id", account.ID)
	return s.newSession(ctx, account)
}

// ChangePassword replaces the password of a signed-in account after checking
// the current one. The existing session stays valid.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return common.WithMessage(common.ErrValidation, "Current and new password are required")
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	accounts := s.repomanager.Accounts(s.db)
	account, err := accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.WithMessage(common.ErrNotFound, msgUserNotFound)
		}
		return s.internal(ctx, "account lookup", err)
	}
	if !s.hasher.Verify(currentPassword, account.PasswordHash) {
		return common.WithMessage(common.ErrInvalidCredentials, msgCurrentPasswordWrong)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.internal(ctx, "hash password", err)
	}
	if err := accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		return s.internal(ctx, "change password", err)
	}

	s.logger.Info(ctx, "password changed", "account_id", account.ID)
	return nil
}
