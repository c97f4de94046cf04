package mailer

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPMessage(t *testing.T) {
	subject, body := OTPMessage(models.PurposeSignup, "123456", 5*time.Minute)
	assert.Equal(t, "Verify your email", subject)
	assert.Equal(t, "Your OTP to verify your email is 123456. It is valid for 5 minutes.", body)

	subject, body = OTPMessage(models.PurposeReset, "654321", 5*time.Minute)
	assert.Equal(t, "Reset your password", subject)
	assert.Equal(t, "Your OTP to reset your password is 654321. It is valid for 5 minutes.", body)
}

func TestNew_SelectsSink(t *testing.T) {
	ctx := context.Background()
	logger := logging.Nop()

	s, err := New(ctx, &config.Config{}, logger)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(ctx, &config.Config{MailSink: SinkLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogSink{}, s)

	_, err = New(ctx, &config.Config{MailSink: "pigeon"}, logger)
	require.Error(t, err)

	_, err = New(ctx, &config.Config{MailSink: SinkSMTP}, logger)
	require.Error(t, err, "smtp without credentials")
}

func TestEnvelope_Message(t *testing.T) {
	e := envelope{from: "shop@gmail.com", fromName: "PSR Enterprises"}

	m, err := e.message("ann@x.com", "Verify your email", "body text")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, `From: "PSR Enterprises" <shop@gmail.com>`)
	assert.Contains(t, raw, "To: <ann@x.com>")
	assert.Contains(t, raw, "Subject: Verify your email")
	assert.Contains(t, raw, "body text")

	_, err = e.message("not an address", "s", "b")
	require.Error(t, err)
}

func TestLogSink_Send(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(logging.New(&buf, "info"))

	require.NoError(t, s.Send(context.Background(), "ann@x.com", "Verify your email", "code 1"))

	out, err := io.ReadAll(&buf)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"to":"ann@x.com"`)
	assert.Contains(t, string(out), `"module":"mailer"`)
}
