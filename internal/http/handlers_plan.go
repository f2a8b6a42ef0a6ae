package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/domain/billing"
	"github.com/voxa-app/voxa-api/internal/service"
)

// Upgrader drives the free to premium purchase.
type Upgrader interface {
	StartCheckout(ctx context.Context, userID string) (billing.PaymentIntent, error)
	ConfirmUpgrade(ctx context.Context, userID, paymentIntentID string) error
}

// PlanHandlers serves the checkout and plan endpoints.
type PlanHandlers struct {
	Upgrades Upgrader
	Logger   *slog.Logger
}

func (h *PlanHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type updatePlanRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// UpdatePlan upgrades the signed-in user to premium. The user always comes from
// the session; the body only names the payment intent.
// POST /api/update-plan.
func (h *PlanHandlers) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	profile, ok := ProfileFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "User not found")
		return
	}

	var req updatePlanRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.Upgrades.ConfirmUpgrade(r.Context(), profile.ID, req.PaymentIntentID)
	switch {
	case err == nil:
		writeResult(w, http.StatusOK, Result{Success: true})
	case errors.Is(err, domainauth.ErrProfileNotFound):
		writeFailure(w, http.StatusUnauthorized, "User not found")
	case errors.Is(err, domainauth.ErrPaymentNotVerified):
		h.logger().WarnContext(r.Context(), "upgrade rejected", "user_id", profile.ID, "error", err)
		writeResult(w, http.StatusPaymentRequired, Result{
			Success:    false,
			Message:    "Payment could not be verified",
			UpgradeURL: service.UpgradePath,
		})
	default:
		h.logger().ErrorContext(r.Context(), "update plan failed", "user_id", profile.ID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to update plan")
	}
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent starts a premium purchase for the signed-in user.
// POST /api/create-payment-intent.
func (h *PlanHandlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	profile, ok := ProfileFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "User not found")
		return
	}

	intent, err := h.Upgrades.StartCheckout(r.Context(), profile.ID)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, paymentIntentResponse{ClientSecret: intent.ClientSecret})
	case errors.Is(err, service.ErrCheckoutUnavailable):
		writeFailure(w, http.StatusServiceUnavailable, "Payments are not available")
	default:
		h.logger().ErrorContext(r.Context(), "create payment intent failed", "user_id", profile.ID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to create payment intent")
	}
}

// PremiumInterview accepts a premium interview request. Generation itself runs
// elsewhere; this endpoint only admits premium callers.
// POST /api/interviews/premium.
func (h *PlanHandlers) PremiumInterview(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	h.logger().InfoContext(r.Context(), "premium interview requested", "user_id", profile.ID)
	writeResult(w, http.StatusAccepted, Result{Success: true, Message: "Premium interview request accepted"})
}
