package token

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// Claims is the subset of access-token claims the client cares about for
// display. Tokens are otherwise treated as opaque; nothing here is verified.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Decode parses tokenStr without signature verification. The server remains
// the only authority on token validity.
func Decode(tokenStr string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return Claims{}, errors.Wrap(err, "parse token")
	}

	var c Claims
	if sub, ok := claims["sub"].(string); ok {
		c.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		c.Email = email
	}
	if exp, ok := claims["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := claims["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0)
	}
	return c, nil
}

// Expired reports whether the token carries an exp claim in the past.
func (c Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}
