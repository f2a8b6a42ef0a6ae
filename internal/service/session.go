package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/observability/metrics"
	"github.com/voxa-app/voxa-api/internal/ports"
)

// CredentialDeps groups the ports that mint, verify and revoke session credentials.
type CredentialDeps struct {
	Verifier ports.IdentityVerifier // Required: ID token verification
	Issuer   ports.CredentialIssuer // Required: signs session credentials
	Sessions ports.SessionStore     // Required: revocable session records
}

// SessionSettings holds tunables for SessionService.
type SessionSettings struct {
	TTL       time.Duration    // Tests only; production uses domainauth.SessionTTL
	Now       func() time.Time // Defaults to time.Now
	Telemetry Telemetry
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Credentials CredentialDeps
	Profiles    ports.ProfileRepository // Required
	Settings    SessionSettings
}

// SessionService exchanges ID tokens for session credentials and resolves credentials
// back to profiles on every request.
type SessionService struct {
	verifier  ports.IdentityVerifier
	issuer    ports.CredentialIssuer
	sessions  ports.SessionStore
	profiles  ports.ProfileRepository
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
	telemetry Telemetry
}

// NewSessionService constructs a SessionService. It panics when a required port is nil.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	c := opts.Credentials
	if c.Verifier == nil || c.Issuer == nil || c.Sessions == nil {
		panic("service: SessionService requires Verifier, Issuer and Sessions")
	}
	if opts.Profiles == nil {
		panic("service: SessionService requires Profiles")
	}

	ttl := opts.Settings.TTL
	if ttl <= 0 {
		ttl = domainauth.SessionTTL
	}
	now := opts.Settings.Now
	if now == nil {
		now = time.Now
	}

	return &SessionService{
		verifier:  c.Verifier,
		issuer:    c.Issuer,
		sessions:  c.Sessions,
		profiles:  opts.Profiles,
		ttl:       ttl,
		now:       now,
		logger:    opts.Settings.Telemetry.logger("session"),
		telemetry: opts.Settings.Telemetry,
	}
}

// TTL returns the lifetime given to new credentials.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// IssuedSession is the outcome of a successful sign-in.
type IssuedSession struct {
	Token   string
	Session domainauth.Session
	Profile domainauth.Profile
}

// CreateSession verifies an ID token and mints a session credential for its subject.
// The subject must already have a profile (domainauth.ErrProfileNotFound otherwise).
// Verification failures wrap domainauth.ErrInvalidCredential.
func (s *SessionService) CreateSession(ctx context.Context, idToken string) (*IssuedSession, error) {
	started := s.now()

	identity, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.telemetry.record(metrics.EventSignIn, metrics.ResultRejected, started, err)
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	profile, err := s.profiles.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domainauth.ErrProfileNotFound) {
			s.telemetry.record(metrics.EventSignIn, metrics.ResultRejected, started, err)
			return nil, domainauth.ErrProfileNotFound
		}
		s.telemetry.record(metrics.EventSignIn, metrics.ResultError, started, err)
		return nil, fmt.Errorf("get profile: %w", err)
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	sess := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		Email:     firstNonEmpty(identity.Email, profile.Email),
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.ttl),
	}

	token, err := s.issuer.Issue(sess)
	if err != nil {
		s.telemetry.record(metrics.EventSignIn, metrics.ResultError, started, err)
		return nil, fmt.Errorf("issue credential: %w", err)
	}
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		s.telemetry.record(metrics.EventSignIn, metrics.ResultError, started, saveErr)
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.telemetry.record(metrics.EventSignIn, metrics.ResultSuccess, started, nil)
	s.logger.InfoContext(ctx, "session created", "user_id", profile.ID, "session_id", sess.ID)
	return &IssuedSession{Token: token, Session: sess, Profile: profile}, nil
}

// ResolveCurrentUser maps a credential to a principal. It never fails: an empty,
// invalid, expired or revoked credential, a missing profile, and store failures all
// resolve to Anonymous, with the cause logged.
func (s *SessionService) ResolveCurrentUser(ctx context.Context, credential string) domainauth.Principal {
	if credential == "" {
		return domainauth.Anonymous()
	}
	started := s.now()

	profile, err := s.resolve(ctx, credential)
	switch {
	case err == nil:
		s.telemetry.record(metrics.EventResolve, metrics.ResultSuccess, started, nil)
		return domainauth.Authenticated(profile)
	case errors.Is(err, domainauth.ErrInvalidCredential),
		errors.Is(err, domainauth.ErrSessionNotFound),
		errors.Is(err, domainauth.ErrProfileNotFound):
		s.logger.WarnContext(ctx, "session credential rejected", "error", err)
		s.telemetry.record(metrics.EventResolve, metrics.ResultAnonymous, started, err)
	default:
		s.logger.ErrorContext(ctx, "session resolution failed", "error", err)
		s.telemetry.record(metrics.EventResolve, metrics.ResultError, started, err)
	}
	return domainauth.Anonymous()
}

func (s *SessionService) resolve(ctx context.Context, credential string) (domainauth.Profile, error) {
	claims, err := s.issuer.Verify(credential)
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("verify credential: %w", err)
	}

	record, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("load session %s: %w", claims.ID, err)
	}
	if record.UserID != claims.UserID {
		return domainauth.Profile{}, fmt.Errorf("session %s subject mismatch: %w", claims.ID, domainauth.ErrInvalidCredential)
	}

	profile, err := s.profiles.GetByID(ctx, claims.UserID)
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("get profile %s: %w", claims.UserID, err)
	}
	return profile, nil
}

// IsAuthenticated reports whether credential resolves to a profile.
func (s *SessionService) IsAuthenticated(ctx context.Context, credential string) bool {
	return s.ResolveCurrentUser(ctx, credential).IsAuthenticated()
}

// ClearSession revokes the server-side record behind credential. It is idempotent:
// an empty, unparsable or already-revoked credential is not an error. Expired
// credentials with a valid signature are still revoked.
func (s *SessionService) ClearSession(ctx context.Context, credential string) error {
	if credential == "" {
		return nil
	}
	started := s.now()

	claims, err := s.issuer.Inspect(credential)
	if err != nil {
		s.logger.DebugContext(ctx, "logout with unverifiable credential", "error", err)
		return nil
	}
	if delErr := s.sessions.Delete(ctx, claims.ID); delErr != nil {
		s.telemetry.record(metrics.EventLogout, metrics.ResultError, started, delErr)
		return fmt.Errorf("revoke session: %w", delErr)
	}

	s.telemetry.record(metrics.EventLogout, metrics.ResultSuccess, started, nil)
	s.logger.InfoContext(ctx, "session revoked", "user_id", claims.UserID, "session_id", claims.ID)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
