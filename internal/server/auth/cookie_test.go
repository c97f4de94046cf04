package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCookie_Production(t *testing.T) {
	s := NewSessions("k", 7*24*time.Hour, false)
	rec := httptest.NewRecorder()

	s.SetCookie(rec, "tok")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "jwt", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
}

func TestSetCookie_DevMode(t *testing.T) {
	s := NewSessions("k", time.Hour, true)
	rec := httptest.NewRecorder()

	s.SetCookie(rec, "tok")

	c := rec.Result().Cookies()[0]
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestClearCookie(t *testing.T) {
	s := NewSessions("k", time.Hour, false)
	rec := httptest.NewRecorder()

	s.ClearCookie(rec)

	header := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "jwt=;"), header)
	assert.Contains(t, header, "Max-Age=0")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Secure")
}
