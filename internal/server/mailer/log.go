package mailer

import (
	"context"

	"github.com/dmitrijs2005/storeauth/internal/logging"
)

// LogSink writes messages to the log. Codes end up in plain text, so it is
// meant for local development only.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("module", "mailer")}
}

func (s *LogSink) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info(ctx, "mail", "to", to, "subject", subject, "body", body)
	return nil
}
