package token_test

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/pkg/token"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestDecode(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	raw := signedToken(t, jwt.MapClaims{
		"sub":   "42",
		"email": "user@example.com",
		"exp":   exp,
	})

	c, err := token.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "42", c.Subject)
	require.Equal(t, "user@example.com", c.Email)
	require.Equal(t, exp, c.ExpiresAt.Unix())
	require.False(t, c.Expired())
}

func TestDecode_Expired(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	c, err := token.Decode(raw)
	require.NoError(t, err)
	require.True(t, c.Expired())
}

func TestDecode_Garbage(t *testing.T) {
	_, err := token.Decode("not-a-jwt")
	require.Error(t, err)
}
