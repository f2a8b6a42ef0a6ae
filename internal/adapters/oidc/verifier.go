package oidc

// Package oidc verifies identity-provider ID tokens using go-oidc.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"golang.org/x/oauth2"
)

// VerifierConfig holds configuration for the ID-token verifier.
type VerifierConfig struct {
	IssuerURL       string
	ClientID        string
	NameClaim       string // JMESPath, defaults to "name"
	EmailClaim      string // JMESPath, defaults to "email"
	SkipIssuerCheck bool
	HTTPClient      *http.Client // Optional, defaults to a 30s timeout client
}

// Verifier implements ports.IdentityVerifier against an OIDC issuer.
type Verifier struct {
	verifier *gooidc.IDTokenVerifier
	claims   *ClaimMapper
}

// NewVerifier discovers the issuer and builds a verifier backed by its remote JWKS.
// The key set keeps using cfg.HTTPClient for later key rotations.
func NewVerifier(ctx context.Context, cfg VerifierConfig) (*Verifier, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(context.WithValue(ctx, oauth2.HTTPClient, httpClient), issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	mapper, err := NewClaimMapper(cfg.NameClaim, cfg.EmailClaim)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		verifier: op.Verifier(oidcConfig(cfg)),
		claims:   mapper,
	}, nil
}

// NewStaticVerifier builds a verifier from an explicit key set, skipping discovery.
func NewStaticVerifier(keySet gooidc.KeySet, cfg VerifierConfig) (*Verifier, error) {
	if keySet == nil {
		return nil, errors.New("key set is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	mapper, err := NewClaimMapper(cfg.NameClaim, cfg.EmailClaim)
	if err != nil {
		return nil, err
	}
	return &Verifier{
		verifier: gooidc.NewVerifier(cfg.IssuerURL, keySet, oidcConfig(cfg)),
		claims:   mapper,
	}, nil
}

func oidcConfig(cfg VerifierConfig) *gooidc.Config {
	return &gooidc.Config{
		ClientID:        cfg.ClientID,
		SkipIssuerCheck: cfg.SkipIssuerCheck,
	}
}

// VerifyIDToken validates rawIDToken and maps its claims into an Identity.
func (v *Verifier) VerifyIDToken(ctx context.Context, rawIDToken string) (domainauth.Identity, error) {
	rawIDToken = strings.TrimSpace(rawIDToken)
	if rawIDToken == "" {
		return domainauth.Identity{}, fmt.Errorf("empty id token: %w", domainauth.ErrInvalidCredential)
	}

	tok, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id token: %w: %w", domainauth.ErrInvalidCredential, err)
	}
	if tok.Subject == "" {
		return domainauth.Identity{}, fmt.Errorf("id token has no subject: %w", domainauth.ErrInvalidCredential)
	}

	var raw map[string]any
	if err := tok.Claims(&raw); err != nil {
		return domainauth.Identity{}, fmt.Errorf("decode id token claims: %w: %w", domainauth.ErrInvalidCredential, err)
	}

	return domainauth.Identity{
		UserID:    tok.Subject,
		Name:      v.claims.Name(raw),
		Email:     v.claims.Email(raw),
		ExpiresAt: tok.Expiry,
	}, nil
}
