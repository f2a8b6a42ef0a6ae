package httpx

import (
	"context"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
)

// principalKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type principalKey struct{}

// SetPrincipalInContext returns a child context that carries the resolved principal.
func SetPrincipalInContext(ctx context.Context, p domainauth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by ResolvePrincipal.
// Requests that never passed through the middleware are anonymous.
func PrincipalFromContext(ctx context.Context) domainauth.Principal {
	if p, ok := ctx.Value(principalKey{}).(domainauth.Principal); ok {
		return p
	}
	return domainauth.Anonymous()
}

// ProfileFromContext returns the signed-in profile, if any.
func ProfileFromContext(ctx context.Context) (domainauth.Profile, bool) {
	return PrincipalFromContext(ctx).Profile()
}

// IsAnonymous reports whether the current request context is unauthenticated.
func IsAnonymous(ctx context.Context) bool {
	return !PrincipalFromContext(ctx).IsAuthenticated()
}
