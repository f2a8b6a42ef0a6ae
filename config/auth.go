package config

import (
	"errors"
	"fmt"
	"strings"
)

// AuthMode represents the identity provider mode for the application.
type AuthMode string

const (
	// AuthModeOIDC verifies ID tokens against an OIDC issuer.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock accepts dev identity tokens (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, mock)", v)
	}
}

// OIDCConfig contains ID-token verification settings.
type OIDCConfig struct {
	IssuerURL string `env:"ISSUER_URL"`
	ClientID  string `env:"CLIENT_ID"`
	// NameClaim and EmailClaim are JMESPath expressions evaluated against the token claims.
	NameClaim  string `env:"NAME_CLAIM"  envDefault:"name || given_name"`
	EmailClaim string `env:"EMAIL_CLAIM" envDefault:"email"`
	// SkipIssuerCheck is needed for providers whose discovery issuer differs from token iss (e.g. Firebase emulators).
	SkipIssuerCheck bool `env:"SKIP_ISSUER_CHECK" envDefault:"false"`
}

// SessionConfig controls session credential signing. The credential lifetime is
// fixed (domain auth.SessionTTL) and is not configurable.
type SessionConfig struct {
	// Secret is the HMAC key for session credentials; at least 32 bytes outside dev mode.
	Secret string `env:"SECRET"`
	Issuer string `env:"ISSUER" envDefault:"voxa"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity verifier to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	OIDC OIDCConfig `envPrefix:"OIDC_"`

	Session SessionConfig `envPrefix:"SESSION_"`
}

const minSessionSecretLen = 32

// Sanitize trims values and restores the default email claim.
func (a *AuthConfig) Sanitize() {
	a.OIDC.IssuerURL = strings.TrimSpace(a.OIDC.IssuerURL)
	a.OIDC.ClientID = strings.TrimSpace(a.OIDC.ClientID)
	if strings.TrimSpace(a.OIDC.EmailClaim) == "" {
		a.OIDC.EmailClaim = "email"
	}
}

// Validate reports configuration that would make the service unable to authenticate anyone.
func (a *AuthConfig) Validate(isDev bool) error {
	var errs []error
	if a.Mode == AuthModeOIDC {
		if a.OIDC.IssuerURL == "" {
			errs = append(errs, errors.New("OIDC_ISSUER_URL is required when AUTH_MODE=oidc"))
		}
		if a.OIDC.ClientID == "" {
			errs = append(errs, errors.New("OIDC_CLIENT_ID is required when AUTH_MODE=oidc"))
		}
	}
	if a.Mode == AuthModeMock && !isDev {
		errs = append(errs, errors.New("AUTH_MODE=mock is only allowed in development"))
	}
	if !isDev && len(a.Session.Secret) < minSessionSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen))
	}
	return errors.Join(errs...)
}
