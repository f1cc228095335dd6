package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// NewTestClaims creates Claims with the given subject.
// This is primarily for testing purposes.
func NewTestClaims(subject string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
	}
}

// StaticVerifier accepts exactly one token. It is meant for tests of code
// that sits behind Middleware.
type StaticVerifier struct {
	Token  string
	Claims *Claims
}

// Verify implements TokenVerifier.
func (s StaticVerifier) Verify(token string) (*Claims, error) {
	if token != s.Token {
		return nil, fmt.Errorf("unknown token")
	}
	return s.Claims, nil
}
