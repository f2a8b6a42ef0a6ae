package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/voxa-app/voxa-api/config"
	"github.com/voxa-app/voxa-api/internal/adapters/devauth"
	"github.com/voxa-app/voxa-api/internal/adapters/oidc"
	redisadapter "github.com/voxa-app/voxa-api/internal/adapters/redis"
	"github.com/voxa-app/voxa-api/internal/adapters/sessiontoken"
	"github.com/voxa-app/voxa-api/internal/ports"
	"github.com/voxa-app/voxa-api/internal/service"
)

// devSessionSecret signs dev-mode credentials when SESSION_SECRET is unset.
const devSessionSecret = "voxa-dev-session-secret-do-not-use"

// AuthConfig contains configuration for the credential dependencies.
type AuthConfig struct {
	Auth        config.AuthConfig
	IsDev       bool
	RedisClient redis.UniversalClient
	KeyPrefix   string
	Logger      *slog.Logger
}

// BuildCredentialDeps wires the identity verifier for the configured auth mode,
// the session credential signer and the Redis session record store.
func BuildCredentialDeps(ctx context.Context, cfg AuthConfig) (service.CredentialDeps, error) {
	if cfg.RedisClient == nil {
		return service.CredentialDeps{}, errors.New("session store requires a redis client")
	}

	verifier, err := buildIdentityVerifier(ctx, cfg)
	if err != nil {
		return service.CredentialDeps{}, err
	}

	secret := cfg.Auth.Session.Secret
	if secret == "" && cfg.IsDev {
		if cfg.Logger != nil {
			cfg.Logger.WarnContext(ctx, "SESSION_SECRET not set; using the development signing key")
		}
		secret = devSessionSecret
	}
	signer, err := sessiontoken.NewSigner([]byte(secret), cfg.Auth.Session.Issuer)
	if err != nil {
		return service.CredentialDeps{}, fmt.Errorf("create session signer: %w", err)
	}

	return service.CredentialDeps{
		Verifier: verifier,
		Issuer:   signer,
		Sessions: redisadapter.NewSessionStore(redisadapter.SessionStoreOptions{
			Client:    cfg.RedisClient,
			KeyPrefix: cfg.KeyPrefix,
		}),
	}, nil
}

//nolint:ireturn // the verifier implementation depends on the auth mode.
func buildIdentityVerifier(ctx context.Context, cfg AuthConfig) (ports.IdentityVerifier, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		if !cfg.IsDev {
			return nil, errors.New("mock auth is only allowed in development")
		}
		if cfg.Logger != nil {
			cfg.Logger.WarnContext(ctx, "using development identity verifier; any dev: token is accepted")
		}
		return devauth.NewVerifier(0), nil

	case config.AuthModeOIDC:
		o := cfg.Auth.OIDC
		v, err := oidc.NewVerifier(ctx, oidc.VerifierConfig{
			IssuerURL:       o.IssuerURL,
			ClientID:        o.ClientID,
			NameClaim:       o.NameClaim,
			EmailClaim:      o.EmailClaim,
			SkipIssuerCheck: o.SkipIssuerCheck,
		})
		if err != nil {
			return nil, fmt.Errorf("create oidc verifier: %w", err)
		}
		return v, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}
