package auth

import (
	"context"
	"slices"
	"strings"
)

type contextKey int

const (
	claimsKey contextKey = iota
)

// WithClaims returns a new context carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext returns the verified claims, or nil if not authenticated.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// Subject returns the token subject, or empty string if not authenticated.
func Subject(ctx context.Context) string {
	claims := FromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// IsAuthenticated returns true if the request has valid authentication.
func IsAuthenticated(ctx context.Context) bool {
	return FromContext(ctx) != nil
}

// HasScope reports whether the token grants scope, either in the
// space-separated "scope" claim or in "permissions".
func HasScope(ctx context.Context, scope string) bool {
	claims := FromContext(ctx)
	if claims == nil {
		return false
	}
	return slices.Contains(strings.Fields(claims.Scope), scope) ||
		slices.Contains(claims.Permissions, scope)
}
