// Package mailer delivers one-time codes to account owners. Sinks are
// interchangeable: SMTP for real delivery, an S3 bucket that archives raw
// messages for staging, and the structured log for local development.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/wneessen/go-mail"
)

// Sink sends a plain-text message. A single call is a single delivery
// attempt; callers do not retry.
type Sink interface {
	Send(ctx context.Context, to, subject, body string) error
}

const (
	SinkSMTP = "smtp"
	SinkS3   = "s3"
	SinkLog  = "log"
)

// New builds the sink selected by cfg.MailSink. It returns a nil Sink and no
// error when mail is disabled.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (Sink, error) {
	switch cfg.MailSink {
	case "":
		return nil, nil
	case SinkSMTP:
		return NewSMTPSink(cfg)
	case SinkS3:
		return NewS3Sink(ctx, cfg)
	case SinkLog:
		return NewLogSink(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail sink %q", cfg.MailSink)
	}
}

// OTPMessage renders the subject and body that carry code for purpose.
func OTPMessage(purpose models.Purpose, code string, validity time.Duration) (subject, body string) {
	minutes := int(validity.Round(time.Minute) / time.Minute)
	if purpose == models.PurposeReset {
		return "Reset your password",
			fmt.Sprintf("Your OTP to reset your password is %s. It is valid for %d minutes.", code, minutes)
	}
	return "Verify your email",
		fmt.Sprintf("Your OTP to verify your email is %s. It is valid for %d minutes.", code, minutes)
}

// envelope holds the sender identity shared by the SMTP and S3 sinks.
type envelope struct {
	from     string
	fromName string
}

func (e envelope) message(to, subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(e.fromName, e.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}
