package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/domain/billing"
	"github.com/voxa-app/voxa-api/internal/observability/metrics"
	"github.com/voxa-app/voxa-api/internal/ports"
)

// ErrCheckoutUnavailable is returned when no payment processor is configured.
var ErrCheckoutUnavailable = errors.New("checkout is not configured")

// CheckoutConfig describes the premium purchase.
type CheckoutConfig struct {
	Gateway ports.PaymentGateway // Optional: nil disables checkout and verification
	Price   billing.Price
	// Verify requires a succeeded intent owned by the caller before upgrading.
	Verify bool
}

// UpgradeServiceOptions groups dependencies for UpgradeService.
type UpgradeServiceOptions struct {
	Profiles  ports.ProfileRepository // Required
	Checkout  CheckoutConfig
	Telemetry Telemetry
}

// UpgradeService moves a profile from free to premium after payment.
type UpgradeService struct {
	profiles  ports.ProfileRepository
	checkout  CheckoutConfig
	logger    *slog.Logger
	telemetry Telemetry
}

// NewUpgradeService constructs an UpgradeService. It panics when Profiles is nil.
func NewUpgradeService(opts UpgradeServiceOptions) *UpgradeService {
	if opts.Profiles == nil {
		panic("service: UpgradeService requires Profiles")
	}
	checkout := opts.Checkout
	if checkout.Gateway == nil {
		checkout.Verify = false
	}
	return &UpgradeService{
		profiles:  opts.Profiles,
		checkout:  checkout,
		logger:    opts.Telemetry.logger("upgrade"),
		telemetry: opts.Telemetry,
	}
}

// VerifiesPayments reports whether ConfirmUpgrade checks the payment intent.
func (s *UpgradeService) VerifiesPayments() bool { return s.checkout.Verify }

// StartCheckout creates a payment intent for the premium price bound to userID.
func (s *UpgradeService) StartCheckout(ctx context.Context, userID string) (billing.PaymentIntent, error) {
	if s.checkout.Gateway == nil {
		return billing.PaymentIntent{}, ErrCheckoutUnavailable
	}
	started := time.Now()

	intent, err := s.checkout.Gateway.CreateIntent(ctx, billing.CreateIntentInput{
		UserID:   userID,
		Amount:   s.checkout.Price.Amount,
		Currency: s.checkout.Price.Currency,
	})
	if err != nil {
		s.telemetry.record(metrics.EventPaymentIntent, metrics.ResultError, started, err)
		return billing.PaymentIntent{}, fmt.Errorf("create payment intent: %w", err)
	}

	s.telemetry.record(metrics.EventPaymentIntent, metrics.ResultSuccess, started, nil)
	s.logger.InfoContext(ctx, "payment intent created", "user_id", userID, "payment_intent_id", intent.ID)
	return intent, nil
}

// ConfirmUpgrade sets the premium plan on userID's profile. userID must come from the
// resolved session, never from the request body. Repeating the call is a no-op.
//
// When payment verification is enabled, paymentIntentID must name a succeeded intent
// for the premium price whose metadata binds it to userID; otherwise the result wraps
// domainauth.ErrPaymentNotVerified. An unknown profile returns domainauth.ErrProfileNotFound.
func (s *UpgradeService) ConfirmUpgrade(ctx context.Context, userID, paymentIntentID string) error {
	if userID == "" {
		return domainauth.ErrProfileNotFound
	}
	started := time.Now()

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return s.fail(started, fmt.Errorf("get profile: %w", err))
	}
	if profile.IsPremium() {
		s.telemetry.record(metrics.EventUpgrade, metrics.ResultSuccess, started, nil)
		return nil
	}

	if s.checkout.Verify {
		if verifyErr := s.verifyPayment(ctx, userID, paymentIntentID); verifyErr != nil {
			return s.fail(started, verifyErr)
		}
	}

	if setErr := s.profiles.SetPlan(ctx, userID, domainauth.PlanPremium); setErr != nil {
		return s.fail(started, fmt.Errorf("set plan: %w", setErr))
	}

	s.telemetry.record(metrics.EventUpgrade, metrics.ResultSuccess, started, nil)
	s.logger.InfoContext(ctx, "profile upgraded", "user_id", userID, "payment_intent_id", paymentIntentID)
	return nil
}

func (s *UpgradeService) verifyPayment(ctx context.Context, userID, intentID string) error {
	if intentID == "" {
		return fmt.Errorf("missing payment intent: %w", domainauth.ErrPaymentNotVerified)
	}

	intent, err := s.checkout.Gateway.GetIntent(ctx, intentID)
	if err != nil {
		if errors.Is(err, billing.ErrIntentNotFound) {
			return fmt.Errorf("payment intent %s: %w", intentID, domainauth.ErrPaymentNotVerified)
		}
		return fmt.Errorf("get payment intent: %w", err)
	}

	switch {
	case !intent.Succeeded():
		return fmt.Errorf("payment intent %s status %q: %w", intentID, intent.Status, domainauth.ErrPaymentNotVerified)
	case intent.UserID != userID:
		return fmt.Errorf("payment intent %s belongs to another user: %w", intentID, domainauth.ErrPaymentNotVerified)
	case !intent.Covers(s.checkout.Price):
		return fmt.Errorf("payment intent %s amount %d %s: %w",
			intentID, intent.Amount, intent.Currency, domainauth.ErrPaymentNotVerified)
	}
	return nil
}

func (s *UpgradeService) fail(started time.Time, err error) error {
	result := metrics.ResultError
	if errors.Is(err, domainauth.ErrPaymentNotVerified) || errors.Is(err, domainauth.ErrProfileNotFound) {
		result = metrics.ResultRejected
	}
	s.telemetry.record(metrics.EventUpgrade, result, started, err)
	return err
}
