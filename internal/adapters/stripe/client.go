// Package stripe implements the payment gateway for one-time premium purchases on
// top of the Stripe Go SDK.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/voxa-app/voxa-api/internal/domain/billing"
	"github.com/voxa-app/voxa-api/internal/ports"
)

// ErrIntentNotFound is returned when the processor does not know the payment intent id.
var ErrIntentNotFound = billing.ErrIntentNotFound

// Config configures the Stripe client.
type Config struct {
	SecretKey string
	// APIBase overrides the Stripe API origin (tests, proxies). Defaults to api.stripe.com.
	APIBase    string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	Logger     *slog.Logger
}

// Client implements ports.PaymentGateway against the Stripe payment intents API.
// Each Client owns its backend; the SDK's package-level key is never touched.
type Client struct {
	intents paymentintent.Client
	newKey  func() string
}

var _ ports.PaymentGateway = (*Client)(nil)

// NewClient builds a Stripe client. A secret key is required.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.SecretKey)
	if key == "" {
		return nil, errors.New("stripe secret key is required")
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if base == "" {
		base = stripego.APIURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		URL:               stripego.String(base),
		HTTPClient:        hc,
		MaxNetworkRetries: stripego.Int64(int64(max(cfg.RetryLimit, 0))),
		LeveledLogger:     leveledLogger{logger: logger.With("component", "stripe")},
		EnableTelemetry:   stripego.Bool(false),
	})

	return &Client{
		intents: paymentintent.Client{B: backend, Key: key},
		newKey:  uuid.NewString,
	}, nil
}

// CreateIntent creates a payment intent tagged with the buyer's user id.
// Retries reuse one idempotency key so the processor never creates two charges.
func (c *Client) CreateIntent(ctx context.Context, in billing.CreateIntentInput) (billing.PaymentIntent, error) {
	if in.UserID == "" {
		return billing.PaymentIntent{}, errors.New("user id is required")
	}
	if in.Amount <= 0 {
		return billing.PaymentIntent{}, fmt.Errorf("invalid amount %d", in.Amount)
	}

	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(in.Amount),
		Currency: stripego.String(strings.ToLower(in.Currency)),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(billing.MetadataUserID, in.UserID)
	params.SetIdempotencyKey(c.newKey())

	pi, err := c.intents.New(params)
	if err != nil {
		return billing.PaymentIntent{}, fmt.Errorf("create payment intent: %w", mapError(err))
	}
	return toDomain(pi), nil
}

// GetIntent fetches a payment intent by id.
func (c *Client) GetIntent(ctx context.Context, id string) (billing.PaymentIntent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return billing.PaymentIntent{}, ErrIntentNotFound
	}

	params := &stripego.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.intents.Get(id, params)
	if err != nil {
		return billing.PaymentIntent{}, fmt.Errorf("get payment intent: %w", mapError(err))
	}
	return toDomain(pi), nil
}

func toDomain(pi *stripego.PaymentIntent) billing.PaymentIntent {
	if pi == nil {
		return billing.PaymentIntent{}
	}
	return billing.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		UserID:       pi.Metadata[billing.MetadataUserID],
	}
}

// mapError turns SDK errors into gateway errors. Unknown intents become ErrIntentNotFound.
func mapError(err error) error {
	var se *stripego.Error
	if !errors.As(err, &se) {
		return err
	}
	if se.HTTPStatusCode == http.StatusNotFound || se.Code == stripego.ErrorCodeResourceMissing {
		return fmt.Errorf("%w: %s", ErrIntentNotFound, se.Msg)
	}
	return fmt.Errorf("stripe returned status %d: %s", se.HTTPStatusCode, se.Msg)
}

// leveledLogger routes SDK logs through slog.
type leveledLogger struct {
	logger *slog.Logger
}

func (l leveledLogger) Debugf(format string, v ...any) { l.logger.Debug(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Infof(format string, v ...any)  { l.logger.Info(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Warnf(format string, v ...any)  { l.logger.Warn(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Errorf(format string, v ...any) { l.logger.Error(fmt.Sprintf(format, v...)) }
