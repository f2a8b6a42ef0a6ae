package ports

import (
	"context"

	"github.com/voxa-app/voxa-api/internal/domain/billing"
)

// PaymentGateway talks to the external payment processor.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, in billing.CreateIntentInput) (billing.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (billing.PaymentIntent, error)
}
