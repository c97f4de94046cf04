package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/wneessen/go-mail"
)

type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPSink sends through an authenticated SMTP relay (STARTTLS required).
type SMTPSink struct {
	envelope
	client smtpSender
}

// newSMTPClient is a seam for tests.
var newSMTPClient = func(cfg *config.Config) (smtpSender, error) {
	return mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}

func NewSMTPSink(cfg *config.Config) (*SMTPSink, error) {
	if cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
		return nil, fmt.Errorf("smtp sink: credentials are not configured")
	}
	c, err := newSMTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSink{
		envelope: envelope{from: fromAddress(cfg), fromName: cfg.MailFromName},
		client:   c,
	}, nil
}

func (s *SMTPSink) Send(ctx context.Context, to, subject, body string) error {
	m, err := s.message(to, subject, body)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func fromAddress(cfg *config.Config) string {
	if cfg.MailFrom != "" {
		return cfg.MailFrom
	}
	return cfg.SMTPUser
}
