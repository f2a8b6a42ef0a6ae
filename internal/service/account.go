package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/observability/metrics"
	"github.com/voxa-app/voxa-api/internal/ports"
)

// AccountServiceOptions groups dependencies for AccountService.
type AccountServiceOptions struct {
	Verifier  ports.IdentityVerifier  // Required
	Profiles  ports.ProfileRepository // Required
	Telemetry Telemetry
}

// AccountService provisions user profiles.
type AccountService struct {
	verifier  ports.IdentityVerifier
	profiles  ports.ProfileRepository
	logger    *slog.Logger
	telemetry Telemetry
}

// NewAccountService constructs an AccountService. It panics when a required port is nil.
func NewAccountService(opts AccountServiceOptions) *AccountService {
	if opts.Verifier == nil || opts.Profiles == nil {
		panic("service: AccountService requires Verifier and Profiles")
	}
	return &AccountService{
		verifier:  opts.Verifier,
		profiles:  opts.Profiles,
		logger:    opts.Telemetry.logger("account"),
		telemetry: opts.Telemetry,
	}
}

// SignUpInput groups parameters for SignUp.
type SignUpInput struct {
	IDToken    string
	Name       string
	Attributes map[string]any
}

// SignUp creates the profile for the identity behind IDToken on the free plan.
// The UID and email always come from the verified token. A second sign-up for the
// same UID returns domainauth.ErrProfileExists and leaves the stored profile unchanged.
func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (domainauth.Profile, error) {
	started := time.Now()

	identity, err := s.verifier.VerifyIDToken(ctx, in.IDToken)
	if err != nil {
		s.telemetry.record(metrics.EventSignUp, metrics.ResultRejected, started, err)
		return domainauth.Profile{}, fmt.Errorf("verify id token: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = identity.Name
	}

	created, err := s.profiles.Create(ctx, domainauth.Profile{
		ID:         identity.UserID,
		Name:       name,
		Email:      identity.Email,
		Plan:       domainauth.PlanFree,
		Attributes: in.Attributes,
	})
	if err != nil {
		if errors.Is(err, domainauth.ErrProfileExists) {
			s.telemetry.record(metrics.EventSignUp, metrics.ResultRejected, started, err)
			return domainauth.Profile{}, domainauth.ErrProfileExists
		}
		s.telemetry.record(metrics.EventSignUp, metrics.ResultError, started, err)
		return domainauth.Profile{}, fmt.Errorf("create profile: %w", err)
	}

	s.telemetry.record(metrics.EventSignUp, metrics.ResultSuccess, started, nil)
	s.logger.InfoContext(ctx, "profile created", "user_id", created.ID)
	return created, nil
}
