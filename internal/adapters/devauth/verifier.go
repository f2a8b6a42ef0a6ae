// Package devauth provides an IdentityVerifier for local development that accepts
// unsigned "dev:" tokens instead of real IdP ID tokens.
package devauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
)

// TokenPrefix marks a dev identity token: "dev:<uid>[:<email>[:<name>]]".
const TokenPrefix = "dev:"

// Verifier implements ports.IdentityVerifier for development.
// Never wire it outside dev mode: any caller can mint a token for any UID.
type Verifier struct {
	tokenTTL time.Duration
	now      func() time.Time
}

// NewVerifier constructs a dev verifier. tokenTTL defaults to 1h when zero.
func NewVerifier(tokenTTL time.Duration) *Verifier {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Verifier{tokenTTL: tokenTTL, now: time.Now}
}

// Token builds a dev token for the given identity fields.
func Token(uid, email, name string) string {
	return TokenPrefix + strings.Join([]string{uid, email, name}, ":")
}

// VerifyIDToken parses a dev token. Missing email defaults to <uid>@dev.local.
func (v *Verifier) VerifyIDToken(_ context.Context, raw string) (domainauth.Identity, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), TokenPrefix)
	if !ok {
		return domainauth.Identity{}, fmt.Errorf("not a dev token: %w", domainauth.ErrInvalidCredential)
	}

	parts := strings.SplitN(rest, ":", 3)
	uid := strings.TrimSpace(parts[0])
	if uid == "" {
		return domainauth.Identity{}, fmt.Errorf("dev token has no uid: %w", domainauth.ErrInvalidCredential)
	}

	id := domainauth.Identity{
		UserID:    uid,
		Email:     uid + "@dev.local",
		Name:      uid,
		ExpiresAt: v.now().Add(v.tokenTTL),
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		id.Email = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		id.Name = strings.TrimSpace(parts[2])
	}
	return id, nil
}
