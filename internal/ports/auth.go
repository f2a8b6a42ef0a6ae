package ports

// Package ports defines interfaces (hexagonal ports) for identity, session, profile and payment behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
)

// IdentityVerifier validates ID tokens minted by the identity provider.
type IdentityVerifier interface {
	// VerifyIDToken checks signature, audience and expiry and returns the asserted identity.
	// Any verification failure wraps domainauth.ErrInvalidCredential.
	VerifyIDToken(ctx context.Context, rawIDToken string) (domainauth.Identity, error)
}

// CredentialIssuer mints and verifies signed session credentials.
type CredentialIssuer interface {
	// Issue signs a credential describing sess.
	Issue(sess domainauth.Session) (string, error)
	// Verify checks signature and expiry and returns the embedded session claims.
	Verify(token string) (domainauth.Session, error)
	// Inspect checks the signature only, so expired credentials can still be revoked.
	Inspect(token string) (domainauth.Session, error)
}

// SessionStore persists and retrieves server-side session records.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ProfileRepository persists user profiles keyed by IdP UID.
type ProfileRepository interface {
	// Create inserts a new profile; a duplicate id returns domainauth.ErrProfileExists.
	Create(ctx context.Context, p domainauth.Profile) (domainauth.Profile, error)
	// GetByID returns domainauth.ErrProfileNotFound when no row matches.
	GetByID(ctx context.Context, id string) (domainauth.Profile, error)
	// SetPlan sets the plan; setting the current plan again is a no-op that leaves every column unchanged.
	SetPlan(ctx context.Context, id string, plan domainauth.Plan) error
}
