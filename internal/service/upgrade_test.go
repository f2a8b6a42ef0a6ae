package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/domain/billing"
	repomocks "github.com/voxa-app/voxa-api/internal/mocks"
	mocks "github.com/voxa-app/voxa-api/internal/mocks/auth"
	"go.uber.org/mock/gomock"
)

var premiumPrice = billing.Price{Amount: 999, Currency: "usd"}

func TestUpgradeService_ConfirmUpgrade_Unverified(t *testing.T) {
	ctx := context.Background()
	profiles := mocks.NewMemoryProfileStore()
	profiles.Put(domainauth.Profile{ID: "u1", Name: "Ada", Email: "ada@example.com", Plan: domainauth.PlanFree})
	svc := NewUpgradeService(UpgradeServiceOptions{Profiles: profiles})
	assert.False(t, svc.VerifiesPayments())

	require.NoError(t, svc.ConfirmUpgrade(ctx, "u1", ""))
	first, err := profiles.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.PlanPremium, first.Plan)

	require.NoError(t, svc.ConfirmUpgrade(ctx, "u1", ""))
	second, err := profiles.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second, "redundant upgrade must not change any field")
}

func TestUpgradeService_ConfirmUpgrade_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no user", func(t *testing.T) {
		svc := NewUpgradeService(UpgradeServiceOptions{Profiles: mocks.NewMemoryProfileStore()})
		require.ErrorIs(t, svc.ConfirmUpgrade(ctx, "", ""), domainauth.ErrProfileNotFound)
	})

	t.Run("unknown profile", func(t *testing.T) {
		svc := NewUpgradeService(UpgradeServiceOptions{Profiles: mocks.NewMemoryProfileStore()})
		require.ErrorIs(t, svc.ConfirmUpgrade(ctx, "ghost", ""), domainauth.ErrProfileNotFound)
	})

	t.Run("persistence error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := repomocks.NewMockProfileRepository(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), "u1").Return(domainauth.Profile{ID: "u1", Plan: domainauth.PlanFree}, nil)
		repo.EXPECT().SetPlan(gomock.Any(), "u1", domainauth.PlanPremium).Return(errors.New("disk full"))

		svc := NewUpgradeService(UpgradeServiceOptions{Profiles: repo})
		err := svc.ConfirmUpgrade(ctx, "u1", "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domainauth.ErrProfileNotFound)
		assert.Contains(t, err.Error(), "set plan")
	})

	t.Run("profile removed between read and write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := repomocks.NewMockProfileRepository(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), "u1").Return(domainauth.Profile{ID: "u1", Plan: domainauth.PlanFree}, nil)
		repo.EXPECT().SetPlan(gomock.Any(), "u1", domainauth.PlanPremium).Return(domainauth.ErrProfileNotFound)

		svc := NewUpgradeService(UpgradeServiceOptions{Profiles: repo})
		require.ErrorIs(t, svc.ConfirmUpgrade(ctx, "u1", ""), domainauth.ErrProfileNotFound)
	})
}

func TestUpgradeService_ConfirmUpgrade_VerifiesPayment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		intentID string
		intent   billing.PaymentIntent
		getErr   error
		wantErr  error
		upgraded bool
	}{
		{
			name:     "succeeded intent owned by caller",
			intentID: "pi_1",
			intent:   billing.PaymentIntent{ID: "pi_1", Status: "succeeded", Amount: 999, Currency: "usd", UserID: "u1"},
			upgraded: true,
		},
		{
			name:     "intent still processing",
			intentID: "pi_1",
			intent:   billing.PaymentIntent{ID: "pi_1", Status: "processing", Amount: 999, Currency: "usd", UserID: "u1"},
			wantErr:  domainauth.ErrPaymentNotVerified,
		},
		{
			name:     "intent paid by another user",
			intentID: "pi_1",
			intent:   billing.PaymentIntent{ID: "pi_1", Status: "succeeded", Amount: 999, Currency: "usd", UserID: "u2"},
			wantErr:  domainauth.ErrPaymentNotVerified,
		},
		{
			name:     "intent below price",
			intentID: "pi_1",
			intent:   billing.PaymentIntent{ID: "pi_1", Status: "succeeded", Amount: 1, Currency: "usd", UserID: "u1"},
			wantErr:  domainauth.ErrPaymentNotVerified,
		},
		{
			name:     "unknown intent",
			intentID: "pi_404",
			getErr:   billing.ErrIntentNotFound,
			wantErr:  domainauth.ErrPaymentNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gateway := repomocks.NewMockPaymentGateway(ctrl)
			gateway.EXPECT().GetIntent(gomock.Any(), tt.intentID).Return(tt.intent, tt.getErr)

			profiles := mocks.NewMemoryProfileStore()
			profiles.Put(domainauth.Profile{ID: "u1", Plan: domainauth.PlanFree})
			svc := NewUpgradeService(UpgradeServiceOptions{
				Profiles: profiles,
				Checkout: CheckoutConfig{Gateway: gateway, Price: premiumPrice, Verify: true},
			})

			err := svc.ConfirmUpgrade(ctx, "u1", tt.intentID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			got, getErr := profiles.GetByID(ctx, "u1")
			require.NoError(t, getErr)
			assert.Equal(t, tt.upgraded, got.IsPremium())
		})
	}
}

func TestUpgradeService_ConfirmUpgrade_MissingIntent(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := repomocks.NewMockPaymentGateway(ctrl)

	profiles := mocks.NewMemoryProfileStore()
	profiles.Put(domainauth.Profile{ID: "u1", Plan: domainauth.PlanFree})
	svc := NewUpgradeService(UpgradeServiceOptions{
		Profiles: profiles,
		Checkout: CheckoutConfig{Gateway: gateway, Price: premiumPrice, Verify: true},
	})

	require.ErrorIs(t, svc.ConfirmUpgrade(context.Background(), "u1", ""), domainauth.ErrPaymentNotVerified)
}

func TestUpgradeService_ConfirmUpgrade_AlreadyPremiumSkipsVerification(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := repomocks.NewMockPaymentGateway(ctrl) // no calls expected

	profiles := mocks.NewMemoryProfileStore()
	profiles.Put(domainauth.Profile{ID: "u1", Plan: domainauth.PlanPremium})
	svc := NewUpgradeService(UpgradeServiceOptions{
		Profiles: profiles,
		Checkout: CheckoutConfig{Gateway: gateway, Price: premiumPrice, Verify: true},
	})

	require.NoError(t, svc.ConfirmUpgrade(context.Background(), "u1", ""))
	assert.Zero(t, profiles.SetPlanCalls())
}

func TestUpgradeService_ConfirmUpgrade_GatewayFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := repomocks.NewMockPaymentGateway(ctrl)
	gateway.EXPECT().GetIntent(gomock.Any(), "pi_1").Return(billing.PaymentIntent{}, errors.New("stripe 503"))

	profiles := mocks.NewMemoryProfileStore()
	profiles.Put(domainauth.Profile{ID: "u1", Plan: domainauth.PlanFree})
	svc := NewUpgradeService(UpgradeServiceOptions{
		Profiles: profiles,
		Checkout: CheckoutConfig{Gateway: gateway, Price: premiumPrice, Verify: true},
	})

	err := svc.ConfirmUpgrade(context.Background(), "u1", "pi_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainauth.ErrPaymentNotVerified)
}

func TestUpgradeService_StartCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without gateway", func(t *testing.T) {
		svc := NewUpgradeService(UpgradeServiceOptions{
			Profiles: mocks.NewMemoryProfileStore(),
			Checkout: CheckoutConfig{Verify: true},
		})
		assert.False(t, svc.VerifiesPayments())
		_, err := svc.StartCheckout(ctx, "u1")
		require.ErrorIs(t, err, ErrCheckoutUnavailable)
	})

	t.Run("creates an intent for the premium price", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gateway := repomocks.NewMockPaymentGateway(ctrl)
		gateway.EXPECT().
			CreateIntent(gomock.Any(), billing.CreateIntentInput{UserID: "u1", Amount: 999, Currency: "usd"}).
			Return(billing.PaymentIntent{ID: "pi_1", ClientSecret: "secret"}, nil)

		svc := NewUpgradeService(UpgradeServiceOptions{
			Profiles: mocks.NewMemoryProfileStore(),
			Checkout: CheckoutConfig{Gateway: gateway, Price: premiumPrice},
		})
		intent, err := svc.StartCheckout(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "secret", intent.ClientSecret)
	})
}
