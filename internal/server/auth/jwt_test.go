package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifiedUserID(t *testing.T, s *Sessions, tok string) (string, error) {
	t.Helper()
	parsed, err := jwtauth.VerifyToken(s.TokenAuth(), tok)
	if err != nil {
		return "", err
	}
	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)
	return UserIDFromClaims(claims)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	s := NewSessions("secret", 7*24*time.Hour, false)
	issued := time.Now().Add(-8 * 24 * time.Hour)
	s.now = func() time.Time { return issued }

	tok, err := s.Issue("u1")
	require.NoError(t, err)

	_, err = verifiedUserID(t, s, tok)
	require.Error(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewSessions("right-secret", time.Hour, false).Issue("u2")
	require.NoError(t, err)

	_, err = verifiedUserID(t, NewSessions("wrong-secret", time.Hour, false), tok)
	require.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	_, err := verifiedUserID(t, NewSessions("s", time.Hour, false), "not.a.token")
	require.Error(t, err)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u3",
	})
	signed, err := tok.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = verifiedUserID(t, NewSessions("s", time.Hour, false), signed)
	require.Error(t, err)
}

func TestTokenAuth_VerifiesIssuedTokens(t *testing.T) {
	t.Parallel()

	s := NewSessions("shared-key", time.Hour, false)
	tok, err := s.Issue("acc-7")
	require.NoError(t, err)

	parsed, err := jwtauth.VerifyToken(s.TokenAuth(), tok)
	require.NoError(t, err)

	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)

	id, err := UserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "acc-7", id)
}

func TestUserIDFromClaims_Missing(t *testing.T) {
	t.Parallel()

	_, err := UserIDFromClaims(map[string]any{"sub": "x"})
	require.Error(t, err)

	_, err = UserIDFromClaims(map[string]any{"user_id": 42})
	require.Error(t, err)
}
