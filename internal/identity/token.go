// Package identity supplies bearer tokens obtained from the external identity
// provider and gates access to admin functionality.
package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource yields a bearer token for authenticated requests. Anonymous
// flows run without one.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a fixed token, typically one handed to the
// process at startup.
type StaticTokenSource struct {
	token string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

func (s *StaticTokenSource) Token(context.Context) (string, error) {
	return s.token, nil
}

// Expired reports whether a JWT's exp claim lies before now. The signature is
// deliberately not verified; verification belongs to the identity provider
// and the backend. Tokens that do not parse or carry no exp claim are treated
// as not expired and left for the server to reject.
func Expired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
